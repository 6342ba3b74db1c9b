package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/shopping-list/internal/auth"
	"github.com/sakif/shopping-list/internal/service"
)

// ShoppingListHandler exposes the list and item operations over REST.
//
// HANDLER RESPONSIBILITIES:
// Parse the request (path params, raw JSON body, caller identity), call the
// service, write the response. Validation of values, authorization and
// persistence all live in the service; the handler only checks JSON types.
type ShoppingListHandler struct {
	lists  *service.ShoppingListService
	logger *slog.Logger
}

// NewShoppingListHandler creates a ShoppingListHandler.
func NewShoppingListHandler(lists *service.ShoppingListService, logger *slog.Logger) *ShoppingListHandler {
	return &ShoppingListHandler{lists: lists, logger: logger}
}

// Routes mounts every list and item endpoint on r.
func (h *ShoppingListHandler) Routes(r chi.Router) {
	r.Post("/create", h.HandleCreate)
	r.Get("/list", h.HandleList)
	r.Get("/get/{id}", h.HandleGet)
	r.Patch("/{id}/update", h.HandleUpdate)
	r.Post("/{id}/leave", h.HandleLeave)
	r.Delete("/{id}/delete", h.HandleDelete)

	r.Post("/{id}/item/add", h.HandleAddItem)
	r.Patch("/{id}/item/{itemId}/complete", h.HandleCompleteItem)
	r.Patch("/{id}/item/{itemId}/update", h.HandleRenameItem)
	r.Delete("/{id}/item/{itemId}/delete", h.HandleDeleteItem)
}

func caller(r *http.Request) string {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

// HandleCreate creates a list owned by the caller.
//
// HTTP: POST /shopping-list/create
// REQUEST BODY: {"name": "Groceries", "members": ["user2"]}
func (h *ShoppingListHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		WriteError(w, err)
		return
	}
	name, _ := body.String("name", true)
	members, _ := body.StringSlice("members")
	if err := body.Err(); err != nil {
		WriteError(w, err)
		return
	}

	list, err := h.lists.CreateList(r.Context(), caller(r), name, members)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, list)
}

// HandleList returns every list.
//
// HTTP: GET /shopping-list/list
func (h *ShoppingListHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.ListLists(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, lists)
}

// HandleGet returns one list with its items.
//
// HTTP: GET /shopping-list/get/{id}
func (h *ShoppingListHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	list, err := h.lists.GetList(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// HandleUpdate renames a list and/or replaces its members.
//
// HTTP: PATCH /shopping-list/{id}/update
// REQUEST BODY: {"name"?: "Weekly", "members"?: ["user2"]}
func (h *ShoppingListHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		WriteError(w, err)
		return
	}
	var upd service.ListUpdate
	if name, ok := body.String("name", false); ok {
		upd.Name = &name
	}
	if members, ok := body.StringSlice("members"); ok {
		upd.Members = &members
	}
	id := chi.URLParam(r, "id")
	if err := body.Err(pathID{"id", id, "list"}); err != nil {
		WriteError(w, err)
		return
	}

	list, err := h.lists.UpdateList(r.Context(), caller(r), id, upd)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// HandleLeave removes the caller from the list's members.
//
// HTTP: POST /shopping-list/{id}/leave
func (h *ShoppingListHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	list, err := h.lists.LeaveList(r.Context(), caller(r), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// HandleDelete deletes a list and all of its items.
//
// HTTP: DELETE /shopping-list/{id}/delete
func (h *ShoppingListHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.lists.DeleteList(r.Context(), caller(r), id); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, MessageResponse{Message: "Shopping list deleted successfully"})
}

// HandleAddItem adds an item to a list.
//
// HTTP: POST /shopping-list/{id}/item/add
// REQUEST BODY: {"name": "Milk"}
func (h *ShoppingListHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		WriteError(w, err)
		return
	}
	name, _ := body.String("name", true)
	listID := chi.URLParam(r, "id")
	if err := body.Err(pathID{"listId", listID, "list"}); err != nil {
		WriteError(w, err)
		return
	}

	item, err := h.lists.AddItem(r.Context(), caller(r), listID, name)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, item)
}

// HandleCompleteItem sets an item's done flag.
//
// HTTP: PATCH /shopping-list/{id}/item/{itemId}/complete
// REQUEST BODY: {"checked": true}
func (h *ShoppingListHandler) HandleCompleteItem(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		WriteError(w, err)
		return
	}
	checked, _ := body.Bool("checked", true)
	listID, itemID := chi.URLParam(r, "id"), chi.URLParam(r, "itemId")
	if err := body.Err(pathID{"listId", listID, "list"}, pathID{"itemId", itemID, "item"}); err != nil {
		WriteError(w, err)
		return
	}

	item, err := h.lists.SetItemDone(r.Context(), caller(r), listID, itemID, checked)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

// HandleRenameItem changes an item's name.
//
// HTTP: PATCH /shopping-list/{id}/item/{itemId}/update
// REQUEST BODY: {"name": "Oat milk"}
func (h *ShoppingListHandler) HandleRenameItem(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		WriteError(w, err)
		return
	}
	name, _ := body.String("name", true)
	listID, itemID := chi.URLParam(r, "id"), chi.URLParam(r, "itemId")
	if err := body.Err(pathID{"listId", listID, "list"}, pathID{"itemId", itemID, "item"}); err != nil {
		WriteError(w, err)
		return
	}

	item, err := h.lists.RenameItem(r.Context(), caller(r), listID, itemID, name)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

// HandleDeleteItem removes an item from a list.
//
// HTTP: DELETE /shopping-list/{id}/item/{itemId}/delete
func (h *ShoppingListHandler) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	listID, itemID := chi.URLParam(r, "id"), chi.URLParam(r, "itemId")
	if err := h.lists.DeleteItem(r.Context(), caller(r), listID, itemID); err != nil {
		WriteError(w, err)
		return
	}
	h.logger.Debug("item delete served", slog.String("list", listID), slog.String("item", itemID))
	WriteJSON(w, http.StatusOK, MessageResponse{Message: "Item deleted successfully"})
}
