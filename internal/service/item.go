package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/castpro/castpro/internal/metrics"
	"github.com/castpro/castpro/internal/model"
	"github.com/castpro/castpro/internal/repository"
)

// Item service errors.
var (
	ErrItemNotFound  = errors.New("item not found")
	ErrNotOwner      = errors.New("caller does not own this item")
	ErrTitleRequired = errors.New("title is required")
)

// Item listing defaults and bounds.
const (
	defaultItemLimit = 100
	maxItemLimit     = 500
)

// ItemStore is the subset of the repository used by ItemService.
type ItemStore interface {
	CreateItem(ctx context.Context, item *model.Item) error
	GetItemByID(ctx context.Context, id int64) (*model.Item, error)
	ListItems(ctx context.Context, skip, limit int) ([]*model.Item, error)
	UpdateItem(ctx context.Context, item *model.Item) error
	DeleteItem(ctx context.Context, id int64) error
}

// ItemService handles item CRUD, scoped by the authenticated caller.
// Reads are open to any authenticated user; mutations require ownership.
type ItemService struct {
	store   ItemStore
	metrics metrics.Recorder
}

// NewItemService creates a new ItemService.
func NewItemService(store ItemStore, recorder metrics.Recorder) *ItemService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ItemService{
		store:   store,
		metrics: recorder,
	}
}

// List returns a page of items system-wide, unfiltered by ownership.
func (s *ItemService) List(ctx context.Context, skip, limit int) ([]*model.Item, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > maxItemLimit {
		limit = defaultItemLimit
	}

	items, err := s.store.ListItems(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// CreateItemInput defines input for creating an item.
type CreateItemInput struct {
	Title       string
	Description *string
}

// Create attaches a new item to the caller as owner.
func (s *ItemService) Create(ctx context.Context, caller *model.User, input CreateItemInput) (*model.Item, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	item := &model.Item{
		Title:       title,
		Description: input.Description,
		OwnerID:     caller.ID,
	}

	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.metrics.IncItemCreated()

	return item, nil
}

// Get retrieves an item by ID. Any authenticated user may read any item.
func (s *ItemService) Get(ctx context.Context, id int64) (*model.Item, error) {
	item, err := s.store.GetItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// UpdateItemInput defines a partial update. Nil fields are left untouched.
type UpdateItemInput struct {
	Title       *string
	Description *string
}

// Update merges the supplied fields into the existing item.
// Only the owner may update an item.
func (s *ItemService) Update(ctx context.Context, caller *model.User, id int64, input UpdateItemInput) (*model.Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !item.IsOwnedBy(caller.ID) {
		return nil, ErrNotOwner
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		item.Title = title
	}
	if input.Description != nil {
		item.Description = input.Description
	}

	if err := s.store.UpdateItem(ctx, item); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.metrics.IncItemUpdated()

	return item, nil
}

// Delete removes an item. Only the owner may delete an item.
func (s *ItemService) Delete(ctx context.Context, caller *model.User, id int64) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if !item.IsOwnedBy(caller.ID) {
		return ErrNotOwner
	}

	if err := s.store.DeleteItem(ctx, item.ID); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("delete item: %w", err)
	}

	s.metrics.IncItemDeleted()

	return nil
}
