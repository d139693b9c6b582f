package dto

import (
	"time"

	"github.com/castpro/castpro/internal/model"
)

// CreateItemRequest represents the request body for creating an item.
type CreateItemRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// UpdateItemRequest represents a partial update. Omitted fields are
// left untouched.
type UpdateItemRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ItemResponse represents an item in API responses.
type ItemResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DeleteItemResponse acknowledges a successful deletion.
type DeleteItemResponse struct {
	OK bool `json:"ok"`
}

// ToItemResponse converts an Item model to ItemResponse DTO.
func ToItemResponse(item *model.Item) *ItemResponse {
	return &ItemResponse{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		OwnerID:     item.OwnerID,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// ToItemListResponse converts a slice of items to response DTOs.
func ToItemListResponse(items []*model.Item) []*ItemResponse {
	out := make([]*ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ToItemResponse(item))
	}
	return out
}
