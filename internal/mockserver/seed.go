package mockserver

import "github.com/sakif/shopping-list/internal/model"

// SampleLists returns the documents the mock server is seeded with. Owners
// match the default access table so the same users work against both
// backends.
func SampleLists() []model.ShoppingList {
	return []model.ShoppingList{
		{
			Name:    "Weekly groceries",
			Owner:   "user1",
			Members: []string{"user2", "user3"},
			Items: []model.Item{
				{Name: "Matcha"},
				{Name: "Almond milk", Done: true},
				{Name: "Coffee beans"},
			},
		},
		{
			Name:    "Office kitchen",
			Owner:   "user2",
			Members: []string{"user1"},
			Items: []model.Item{
				{Name: "Matcha"},
				{Name: "Almond milk", Done: true},
				{Name: "Coffee beans"},
			},
		},
	}
}
