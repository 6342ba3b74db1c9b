package view

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sakif/shopping-list/internal/apperror"
	"github.com/sakif/shopping-list/internal/client"
	"github.com/sakif/shopping-list/internal/model"
)

// EditState is the state of the item-name editor.
//
//	viewing --StartEditItem--> editing
//	editing --SaveItemEdit (stored)--> viewing
//	editing --CancelItemEdit--> viewing (input discarded)
type EditState int

const (
	Viewing EditState = iota
	Editing
)

func (s EditState) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

// Detail is the state of the screen showing one list. Every change to the
// list (name, members, items) is sent to the store as a whole-document
// update, and the stored document replaces the local copy.
type Detail struct {
	store client.Store
	user  string

	list *model.ShoppingList

	renaming    bool
	renameInput string

	editState   EditState
	editingItem string
	itemInput   string

	filter Filter
}

// NewDetail creates the detail screen for user.
func NewDetail(store client.Store, user string) *Detail {
	return &Detail{store: store, user: user, filter: FilterAll}
}

// Load fetches the list with the given id. Loading the id already shown is
// a no-op.
func (d *Detail) Load(ctx context.Context, id string) error {
	if d.list != nil && d.list.ID == id {
		return nil
	}
	lists, err := d.store.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("loading list: %w", err)
	}
	i := slices.IndexFunc(lists, func(l model.ShoppingList) bool { return l.ID == id })
	if i < 0 {
		return apperror.NotFound("shopping list", id)
	}
	d.renaming = false
	d.CancelItemEdit()
	d.replace(lists[i])
	return nil
}

// List returns the list as currently shown.
func (d *Detail) List() (model.ShoppingList, bool) {
	if d.list == nil {
		return model.ShoppingList{}, false
	}
	return cloneList(*d.list), true
}

func (d *Detail) IsOwner() bool { return d.list != nil && d.list.IsOwner(d.user) }

// IsMember reports whether the current user is a member (not the owner).
func (d *Detail) IsMember() bool { return d.list != nil && d.list.IsMember(d.user) }

// CanEditItems reports whether the current user may change items.
func (d *Detail) CanEditItems() bool { return d.list != nil && d.list.CanAccess(d.user) }

// --- list name ---

func (d *Detail) Renaming() bool { return d.renaming }

func (d *Detail) RenameInput() string { return d.renameInput }

// StartRename opens the name editor, prefilled with the current name.
func (d *Detail) StartRename() error {
	if err := d.requireOwner("rename"); err != nil {
		return err
	}
	d.renaming = true
	d.renameInput = d.list.Name
	return nil
}

func (d *Detail) SetRenameInput(name string) { d.renameInput = name }

// SaveRename stores the edited name and closes the editor.
func (d *Detail) SaveRename(ctx context.Context) error {
	if err := d.requireOwner("rename"); err != nil {
		return err
	}
	if !d.renaming {
		return apperror.ValidationFailed("name", "rename was not started")
	}
	name := strings.TrimSpace(d.renameInput)
	if name == "" {
		return apperror.ValidationFailed("name", "list name is required")
	}

	doc := cloneList(*d.list)
	doc.Name = name
	if err := d.save(ctx, doc); err != nil {
		return err
	}
	d.renaming = false
	return nil
}

// CancelRename closes the editor and resets the input to the stored name.
func (d *Detail) CancelRename() {
	d.renaming = false
	if d.list != nil {
		d.renameInput = d.list.Name
	}
}

// --- members ---

// AddMember grants user access to the list.
func (d *Detail) AddMember(ctx context.Context, user string) error {
	if err := d.requireOwner("add members"); err != nil {
		return err
	}
	user = strings.TrimSpace(user)
	switch {
	case user == "":
		return apperror.ValidationFailed("member", "member id is required")
	case user == d.list.Owner:
		return apperror.ValidationFailed("member", "the owner cannot be a member")
	case d.list.IsMember(user):
		return apperror.ValidationFailed("member", fmt.Sprintf("%s is already a member", user))
	}

	doc := cloneList(*d.list)
	doc.Members = append(doc.Members, user)
	return d.save(ctx, doc)
}

// RemoveMember revokes user's access to the list.
func (d *Detail) RemoveMember(ctx context.Context, user string) error {
	if err := d.requireOwner("remove members"); err != nil {
		return err
	}
	if !d.list.IsMember(user) {
		return apperror.NotFound("member", user)
	}

	doc := cloneList(*d.list)
	doc.Members = slices.DeleteFunc(doc.Members, func(m string) bool { return m == user })
	return d.save(ctx, doc)
}

// Leave removes the current user from the list's members.
func (d *Detail) Leave(ctx context.Context) error {
	if d.list == nil {
		return apperror.NotFound("shopping list", "")
	}
	if !d.IsMember() {
		return apperror.Forbidden("only members can leave a list")
	}

	doc := cloneList(*d.list)
	doc.Members = slices.DeleteFunc(doc.Members, func(m string) bool { return m == d.user })
	return d.save(ctx, doc)
}

// --- items ---

// AddItem appends a new item. Its id is assigned by the store.
func (d *Detail) AddItem(ctx context.Context, name string) error {
	if err := d.requireItemAccess(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return apperror.ValidationFailed("name", "item name is required")
	}

	doc := cloneList(*d.list)
	doc.Items = append(doc.Items, model.Item{Name: name})
	return d.save(ctx, doc)
}

// ToggleItem flips the item's done flag.
func (d *Detail) ToggleItem(ctx context.Context, itemID string) error {
	return d.mutateItem(ctx, itemID, func(it *model.Item) { it.Done = !it.Done })
}

// DeleteItem removes the item from the list.
func (d *Detail) DeleteItem(ctx context.Context, itemID string) error {
	if err := d.requireItemAccess(); err != nil {
		return err
	}
	if d.itemIndex(itemID) < 0 {
		return apperror.NotFound("item", itemID)
	}

	doc := cloneList(*d.list)
	doc.Items = slices.DeleteFunc(doc.Items, func(it model.Item) bool { return it.ID == itemID })
	if err := d.save(ctx, doc); err != nil {
		return err
	}
	if d.editingItem == itemID {
		d.CancelItemEdit()
	}
	return nil
}

func (d *Detail) EditState() EditState { return d.editState }

// EditingItem returns the id of the item being edited.
func (d *Detail) EditingItem() (string, bool) {
	return d.editingItem, d.editState == Editing
}

func (d *Detail) ItemInput() string { return d.itemInput }

// StartEditItem switches to editing itemID, prefilled with its name. Starting
// an edit while another is open discards the other one.
func (d *Detail) StartEditItem(itemID string) error {
	if err := d.requireItemAccess(); err != nil {
		return err
	}
	i := d.itemIndex(itemID)
	if i < 0 {
		return apperror.NotFound("item", itemID)
	}
	d.editState = Editing
	d.editingItem = itemID
	d.itemInput = d.list.Items[i].Name
	return nil
}

func (d *Detail) SetItemInput(name string) { d.itemInput = name }

// SaveItemEdit stores the edited name and returns to viewing. If the store
// rejects it the editor stays open with the input intact.
func (d *Detail) SaveItemEdit(ctx context.Context) error {
	if d.editState != Editing {
		return apperror.ValidationFailed("name", "no item is being edited")
	}
	name := strings.TrimSpace(d.itemInput)
	if name == "" {
		return apperror.ValidationFailed("name", "item name is required")
	}
	if err := d.mutateItem(ctx, d.editingItem, func(it *model.Item) { it.Name = name }); err != nil {
		return err
	}
	d.CancelItemEdit()
	return nil
}

// CancelItemEdit returns to viewing and discards the input.
func (d *Detail) CancelItemEdit() {
	d.editState = Viewing
	d.editingItem = ""
	d.itemInput = ""
}

// --- filter ---

func (d *Detail) Filter() Filter { return d.filter }

func (d *Detail) SetFilter(f Filter) { d.filter = f }

// Items returns the list's items that match the current filter.
func (d *Detail) Items() []model.Item {
	if d.list == nil {
		return []model.Item{}
	}
	return FilterItems(d.list.Items, d.filter)
}

// --- helpers ---

func (d *Detail) mutateItem(ctx context.Context, itemID string, apply func(*model.Item)) error {
	if err := d.requireItemAccess(); err != nil {
		return err
	}
	i := d.itemIndex(itemID)
	if i < 0 {
		return apperror.NotFound("item", itemID)
	}

	doc := cloneList(*d.list)
	apply(&doc.Items[i])
	return d.save(ctx, doc)
}

// save sends doc to the store and shows the stored result.
func (d *Detail) save(ctx context.Context, doc model.ShoppingList) error {
	saved, err := d.store.Update(ctx, doc)
	if err != nil {
		return fmt.Errorf("saving list: %w", err)
	}
	d.replace(*saved)
	return nil
}

func (d *Detail) replace(l model.ShoppingList) {
	l = cloneList(l)
	d.list = &l
	if !d.renaming {
		d.renameInput = l.Name
	}
}

func (d *Detail) itemIndex(itemID string) int {
	return slices.IndexFunc(d.list.Items, func(it model.Item) bool { return it.ID == itemID })
}

func (d *Detail) requireOwner(what string) error {
	if d.list == nil {
		return apperror.NotFound("shopping list", "")
	}
	if !d.IsOwner() {
		return apperror.Forbidden(fmt.Sprintf("only the owner can %s", what))
	}
	return nil
}

func (d *Detail) requireItemAccess() error {
	if d.list == nil {
		return apperror.NotFound("shopping list", "")
	}
	if !d.CanEditItems() {
		return apperror.Forbidden("Forbidden: Access denied")
	}
	return nil
}

func cloneList(l model.ShoppingList) model.ShoppingList {
	l.Members = slices.Clone(l.Members)
	l.Items = slices.Clone(l.Items)
	return l
}
