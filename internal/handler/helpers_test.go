package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/castpro/castpro/internal/model"
	"github.com/castpro/castpro/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response body %q: %v", rr.Body.String(), err)
	}
}

func assertDetail(t *testing.T, rr *httptest.ResponseRecorder, wantStatus int, wantDetail string) {
	t.Helper()
	if rr.Code != wantStatus {
		t.Errorf("status = %d, want %d, body: %s", rr.Code, wantStatus, rr.Body.String())
	}
	var body map[string]string
	decodeBody(t, rr, &body)
	if body["detail"] != wantDetail {
		t.Errorf("detail = %q, want %q", body["detail"], wantDetail)
	}
}

// memUserStore is an in-memory user store backing handler tests.
type memUserStore struct {
	users  map[string]*model.User
	nextID int64
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*model.User)}
}

func (m *memUserStore) CreateUser(ctx context.Context, user *model.User) error {
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrEmailExists
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	m.users[user.Email] = &copied
	return nil
}

func (m *memUserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// memItemStore is an in-memory item store backing handler tests.
type memItemStore struct {
	items  map[int64]*model.Item
	nextID int64
}

func newMemItemStore() *memItemStore {
	return &memItemStore{items: make(map[int64]*model.Item)}
}

func (m *memItemStore) CreateItem(ctx context.Context, item *model.Item) error {
	m.nextID++
	item.ID = m.nextID
	item.CreatedAt = time.Now().UTC()
	item.UpdatedAt = item.CreatedAt
	copied := *item
	m.items[item.ID] = &copied
	return nil
}

func (m *memItemStore) GetItemByID(ctx context.Context, id int64) (*model.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (m *memItemStore) ListItems(ctx context.Context, skip, limit int) ([]*model.Item, error) {
	var out []*model.Item
	for id := int64(1); id <= m.nextID; id++ {
		if item, ok := m.items[id]; ok {
			copied := *item
			out = append(out, &copied)
		}
	}
	if skip >= len(out) {
		return nil, nil
	}
	out = out[skip:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memItemStore) UpdateItem(ctx context.Context, item *model.Item) error {
	if _, ok := m.items[item.ID]; !ok {
		return repository.ErrItemNotFound
	}
	item.UpdatedAt = time.Now().UTC()
	copied := *item
	m.items[item.ID] = &copied
	return nil
}

func (m *memItemStore) DeleteItem(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return repository.ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}
