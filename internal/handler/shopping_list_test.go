package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/shopping-list/internal/access"
	"github.com/sakif/shopping-list/internal/apperror"
	"github.com/sakif/shopping-list/internal/auth"
	"github.com/sakif/shopping-list/internal/model"
	"github.com/sakif/shopping-list/internal/repository/memory"
	"github.com/sakif/shopping-list/internal/service"
)

type testAPI struct {
	router http.Handler
	store  *memory.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	policy := access.NewStaticPolicy(map[string]access.Role{
		"u1": access.RoleOwner,
		"u2": access.RoleOwner,
		"m1": access.RoleMember,
	}, access.RoleNone)
	h := NewShoppingListHandler(service.NewShoppingListService(store, policy, logger), logger)

	r := chi.NewRouter()
	r.Use(auth.Identify(nil))
	r.Route("/shopping-list", h.Routes)
	return &testAPI{router: r, store: store}
}

// do sends a request as user (empty for anonymous) and returns the recorder.
func (a *testAPI) do(t *testing.T, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(auth.UserIDHeader, user)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

func (a *testAPI) createList(t *testing.T, user, body string) model.ShoppingList {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/shopping-list/create", user, body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[model.ShoppingList](t, rr)
}

func (a *testAPI) addItem(t *testing.T, user, listID, name string) model.Item {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/shopping-list/"+listID+"/item/add", user, `{"name":"`+name+`"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[model.Item](t, rr)
}

func TestCreate(t *testing.T) {
	api := newTestAPI(t)

	list := api.createList(t, "u1", `{"name":"Groceries","members":["m1","u1"]}`)

	assert.NotEmpty(t, list.ID)
	assert.Equal(t, "Groceries", list.Name)
	assert.Equal(t, "u1", list.Owner)
	assert.Equal(t, []string{"m1"}, list.Members)
}

func TestCreate_ValidationReportsEveryField(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPost, "/shopping-list/create", "u1", `{"name":42,"members":"m1"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	resp := decode[ErrorResponse](t, rr)
	assert.Equal(t, "validation_error", resp.Error)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, "name", resp.Errors[0].Field)
	assert.Equal(t, "members", resp.Errors[1].Field)
}

func TestCreate_BadBodies(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		body string
	}{
		{"not an object", `["Groceries"]`},
		{"malformed", `{"name":`},
		{"missing name", `{}`},
		{"null name", `{"name":null}`},
		{"blank name", `{"name":"   "}`},
		{"member not a string", `{"name":"x","members":[1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := api.do(t, http.MethodPost, "/shopping-list/create", "u1", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		})
	}
}

func TestCreate_Forbidden(t *testing.T) {
	api := newTestAPI(t)

	for _, user := range []string{"m1", "stranger", ""} {
		rr := api.do(t, http.MethodPost, "/shopping-list/create", user, `{"name":"Groceries"}`)
		assert.Equal(t, http.StatusForbidden, rr.Code, "user %q", user)
		assert.Equal(t, "forbidden", decode[ErrorResponse](t, rr).Error)
	}
}

func TestListAndGet(t *testing.T) {
	api := newTestAPI(t)
	list := api.createList(t, "u1", `{"name":"Groceries"}`)
	api.addItem(t, "u1", list.ID, "Milk")

	rr := api.do(t, http.MethodGet, "/shopping-list/list", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	lists := decode[[]model.ShoppingList](t, rr)
	require.Len(t, lists, 1)
	assert.Equal(t, list.ID, lists[0].ID)

	rr = api.do(t, http.MethodGet, "/shopping-list/get/"+list.ID, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[model.ShoppingList](t, rr)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Milk", got.Items[0].Name)
}

func TestGet_Errors(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/shopping-list/get/not-an-id", "", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(t, http.MethodGet, "/shopping-list/get/"+xid.New().String(), "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, rr).Error)
}

func TestList_StorageFailure(t *testing.T) {
	api := newTestAPI(t)
	api.store.FailWith = apperror.Storage("shoppingListDao.find", 10, errors.New("disk I/O error"))

	rr := api.do(t, http.MethodGet, "/shopping-list/list", "", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	resp := decode[ErrorResponse](t, rr)
	assert.Equal(t, "shoppingListDao.find", resp.Error)
	require.NotNil(t, resp.Parameters)
	assert.Equal(t, 10, resp.Parameters.DatabaseError.Code)
	assert.Equal(t, "disk I/O error", resp.Parameters.DatabaseError.Message)
}

func TestUnknownError_IsGeneric500(t *testing.T) {
	api := newTestAPI(t)
	api.store.FailWith = errors.New("boom: /var/lib/secret.db")

	rr := api.do(t, http.MethodGet, "/shopping-list/list", "", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	resp := decode[ErrorResponse](t, rr)
	assert.Equal(t, "internal_error", resp.Error)
	assert.NotContains(t, rr.Body.String(), "secret")
}

func TestUpdate(t *testing.T) {
	api := newTestAPI(t)
	list := api.createList(t, "u1", `{"name":"Groceries","members":["m1"]}`)

	rr := api.do(t, http.MethodPatch, "/shopping-list/"+list.ID+"/update", "u1", `{"name":"Weekly","members":["u2"]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[model.ShoppingList](t, rr)
	assert.Equal(t, "Weekly", got.Name)
	assert.Equal(t, []string{"u2"}, got.Members)

	rr = api.do(t, http.MethodPatch, "/shopping-list/"+list.ID+"/update", "u2", `{"name":"Mine"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code, "a member cannot rename")

	rr = api.do(t, http.MethodPatch, "/shopping-list/"+list.ID+"/update", "u1", `{"name":true}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLeave(t *testing.T) {
	api := newTestAPI(t)
	list := api.createList(t, "u1", `{"name":"Groceries","members":["m1"]}`)

	rr := api.do(t, http.MethodPost, "/shopping-list/"+list.ID+"/leave", "m1", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Empty(t, decode[model.ShoppingList](t, rr).Members)

	rr = api.do(t, http.MethodPost, "/shopping-list/"+list.ID+"/leave", "u1", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestDelete(t *testing.T) {
	api := newTestAPI(t)
	list := api.createList(t, "u1", `{"name":"Groceries"}`)
	api.addItem(t, "u1", list.ID, "Milk")

	rr := api.do(t, http.MethodDelete, "/shopping-list/"+list.ID+"/delete", "u2", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = api.do(t, http.MethodGet, "/shopping-list/get/"+list.ID, "", "")
	assert.Equal(t, http.StatusOK, rr.Code, "list survives the rejected delete")

	rr = api.do(t, http.MethodDelete, "/shopping-list/"+list.ID+"/delete", "u1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, decode[MessageResponse](t, rr).Message)
	assert.Zero(t, api.store.ItemCount())

	rr = api.do(t, http.MethodDelete, "/shopping-list/"+list.ID+"/delete", "u1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestItems(t *testing.T) {
	api := newTestAPI(t)
	list := api.createList(t, "u1", `{"name":"Groceries","members":["m1"]}`)
	milk := api.addItem(t, "m1", list.ID, "Milk")
	assert.False(t, milk.Done)

	base := "/shopping-list/" + list.ID + "/item/" + milk.ID

	rr := api.do(t, http.MethodPatch, base+"/complete", "m1", `{"checked":true}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, decode[model.Item](t, rr).Done)

	rr = api.do(t, http.MethodPatch, base+"/complete", "m1", `{"checked":"yes"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(t, http.MethodPatch, base+"/complete", "m1", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(t, http.MethodPatch, base+"/update", "m1", `{"name":"Oat milk"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Oat milk", decode[model.Item](t, rr).Name)

	rr = api.do(t, http.MethodDelete, base+"/delete", "m1", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(t, http.MethodPatch, base+"/complete", "m1", `{"checked":false}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAddItem_Outsider(t *testing.T) {
	api := newTestAPI(t)
	list := api.createList(t, "u1", `{"name":"Groceries"}`)

	rr := api.do(t, http.MethodPost, "/shopping-list/"+list.ID+"/item/add", "u2", `{"name":"Milk"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Zero(t, api.store.ItemCount())

	rr = api.do(t, http.MethodPost, "/shopping-list/"+xid.New().String()+"/item/add", "u1", `{"name":"Milk"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func fields(errs []apperror.FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

// Body type failures and malformed path ids come back in one response.
func TestItemRoutes_ReportBodyAndPathErrorsTogether(t *testing.T) {
	api := newTestAPI(t)
	list := api.createList(t, "u1", `{"name":"Groceries"}`)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   []string
	}{
		{"add item, bad list id", http.MethodPost, "/shopping-list/not-an-id/item/add", `{}`, []string{"name", "listId"}},
		{"complete, bad ids", http.MethodPatch, "/shopping-list/nope/item/nope/complete", `{"checked":"yes"}`, []string{"checked", "listId", "itemId"}},
		{"complete, bad item id", http.MethodPatch, "/shopping-list/" + list.ID + "/item/nope/complete", `{}`, []string{"checked", "itemId"}},
		{"rename, bad ids", http.MethodPatch, "/shopping-list/nope/item/nope/update", `{"name":7}`, []string{"name", "listId", "itemId"}},
		{"update list, bad id", http.MethodPatch, "/shopping-list/nope/update", `{"members":"m1"}`, []string{"members", "id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := api.do(t, tt.method, tt.path, "u1", tt.body)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())

			resp := decode[ErrorResponse](t, rr)
			assert.Equal(t, "validation_error", resp.Error)
			assert.ElementsMatch(t, tt.want, fields(resp.Errors))
		})
	}
}

// With a well-typed body, id and value problems are reported by the service together.
func TestAddItem_BadIDAndBlankName(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPost, "/shopping-list/not-an-id/item/add", "u1", `{"name":"  "}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.ElementsMatch(t, []string{"listId", "name"}, fields(decode[ErrorResponse](t, rr).Errors))
}
