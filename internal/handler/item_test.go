package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/castpro/castpro/internal/auth"
	"github.com/castpro/castpro/internal/handler/dto"
	"github.com/castpro/castpro/internal/model"
	"github.com/castpro/castpro/internal/service"
)

// newItemRouter mounts the item routes with the given user injected as
// the authenticated caller, standing in for the auth middleware.
func newItemRouter(svc *service.ItemService, caller *model.User) http.Handler {
	h := NewItemHandler(svc, discardLogger())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := auth.ContextWithUser(req.Context(), caller)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/items", h.List)
	r.Post("/items", h.Create)
	r.Get("/items/{id}", h.Get)
	r.Put("/items/{id}", h.Update)
	r.Delete("/items/{id}", h.Delete)
	return r
}

func doItemRequest(router http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestItemHandler_CreateAndGet(t *testing.T) {
	svc := service.NewItemService(newMemItemStore(), nil)
	owner := &model.User{ID: 1, Email: "alice@example.com", IsActive: true}
	router := newItemRouter(svc, owner)

	rr := doItemRequest(router, http.MethodPost, "/items", strings.NewReader(`{"title":"Spinning rod","description":"7ft medium"}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("create status = %d, want 200, body: %s", rr.Code, rr.Body.String())
	}

	var created dto.ItemResponse
	decodeBody(t, rr, &created)
	if created.ID == 0 {
		t.Fatal("expected a generated item ID")
	}
	if created.Title != "Spinning rod" {
		t.Errorf("title = %q, want Spinning rod", created.Title)
	}
	if created.OwnerID != owner.ID {
		t.Errorf("owner_id = %d, want %d", created.OwnerID, owner.ID)
	}

	rr = doItemRequest(router, http.MethodGet, "/items/1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rr.Code)
	}

	var got dto.ItemResponse
	decodeBody(t, rr, &got)
	if got.ID != created.ID || got.Title != created.Title {
		t.Errorf("get returned %+v, want the created item", got)
	}
}

func TestItemHandler_Create_MissingTitle(t *testing.T) {
	svc := service.NewItemService(newMemItemStore(), nil)
	router := newItemRouter(svc, &model.User{ID: 1})

	rr := doItemRequest(router, http.MethodPost, "/items", strings.NewReader(`{"description":"no title"}`))
	assertDetail(t, rr, http.StatusBadRequest, "Title is required")
}

func TestItemHandler_List(t *testing.T) {
	svc := service.NewItemService(newMemItemStore(), nil)
	owner := &model.User{ID: 1}
	router := newItemRouter(svc, owner)

	for _, title := range []string{"Rod", "Reel", "Net"} {
		rr := doItemRequest(router, http.MethodPost, "/items", strings.NewReader(`{"title":"`+title+`"}`))
		if rr.Code != http.StatusOK {
			t.Fatalf("create %q status = %d, want 200", title, rr.Code)
		}
	}

	rr := doItemRequest(router, http.MethodGet, "/items", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rr.Code)
	}

	var items []dto.ItemResponse
	decodeBody(t, rr, &items)
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}

	// Pagination via query parameters.
	rr = doItemRequest(router, http.MethodGet, "/items?skip=1&limit=1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("paged list status = %d, want 200", rr.Code)
	}
	decodeBody(t, rr, &items)
	if len(items) != 1 || items[0].Title != "Reel" {
		t.Errorf("paged list = %+v, want just the second item", items)
	}
}

func TestItemHandler_Update(t *testing.T) {
	svc := service.NewItemService(newMemItemStore(), nil)
	owner := &model.User{ID: 1}
	router := newItemRouter(svc, owner)

	rr := doItemRequest(router, http.MethodPost, "/items", strings.NewReader(`{"title":"Rod","description":"old"}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("create status = %d, want 200", rr.Code)
	}

	rr = doItemRequest(router, http.MethodPut, "/items/1", strings.NewReader(`{"title":"Rod combo"}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200, body: %s", rr.Code, rr.Body.String())
	}

	var updated dto.ItemResponse
	decodeBody(t, rr, &updated)
	if updated.Title != "Rod combo" {
		t.Errorf("title = %q, want Rod combo", updated.Title)
	}
	if updated.Description == nil || *updated.Description != "old" {
		t.Errorf("description = %v, want preserved %q", updated.Description, "old")
	}
}

func TestItemHandler_Update_NotOwner(t *testing.T) {
	svc := service.NewItemService(newMemItemStore(), nil)
	ownerRouter := newItemRouter(svc, &model.User{ID: 1})
	strangerRouter := newItemRouter(svc, &model.User{ID: 2})

	rr := doItemRequest(ownerRouter, http.MethodPost, "/items", strings.NewReader(`{"title":"Rod"}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("create status = %d, want 200", rr.Code)
	}

	rr = doItemRequest(strangerRouter, http.MethodPut, "/items/1", strings.NewReader(`{"title":"Mine"}`))
	assertDetail(t, rr, http.StatusForbidden, "Not enough permissions")
}

func TestItemHandler_Delete(t *testing.T) {
	svc := service.NewItemService(newMemItemStore(), nil)
	owner := &model.User{ID: 1}
	router := newItemRouter(svc, owner)

	rr := doItemRequest(router, http.MethodPost, "/items", strings.NewReader(`{"title":"Rod"}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("create status = %d, want 200", rr.Code)
	}

	rr = doItemRequest(router, http.MethodDelete, "/items/1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200, body: %s", rr.Code, rr.Body.String())
	}

	var ack dto.DeleteItemResponse
	decodeBody(t, rr, &ack)
	if !ack.OK {
		t.Error("delete acknowledgment ok = false, want true")
	}

	rr = doItemRequest(router, http.MethodGet, "/items/1", nil)
	assertDetail(t, rr, http.StatusNotFound, "Item not found")
}

func TestItemHandler_Delete_NotOwner(t *testing.T) {
	svc := service.NewItemService(newMemItemStore(), nil)
	ownerRouter := newItemRouter(svc, &model.User{ID: 1})
	strangerRouter := newItemRouter(svc, &model.User{ID: 2})

	rr := doItemRequest(ownerRouter, http.MethodPost, "/items", strings.NewReader(`{"title":"Rod"}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("create status = %d, want 200", rr.Code)
	}

	rr = doItemRequest(strangerRouter, http.MethodDelete, "/items/1", nil)
	assertDetail(t, rr, http.StatusForbidden, "Not enough permissions")

	// The item is still readable afterwards.
	rr = doItemRequest(ownerRouter, http.MethodGet, "/items/1", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("get after failed delete status = %d, want 200", rr.Code)
	}
}

func TestItemHandler_NotFound(t *testing.T) {
	svc := service.NewItemService(newMemItemStore(), nil)
	router := newItemRouter(svc, &model.User{ID: 1})

	rr := doItemRequest(router, http.MethodGet, "/items/99", nil)
	assertDetail(t, rr, http.StatusNotFound, "Item not found")
}

func TestItemHandler_InvalidID(t *testing.T) {
	svc := service.NewItemService(newMemItemStore(), nil)
	router := newItemRouter(svc, &model.User{ID: 1})

	rr := doItemRequest(router, http.MethodGet, "/items/abc", nil)
	assertDetail(t, rr, http.StatusBadRequest, "Invalid item ID")
}
