package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/castpro/castpro/internal/auth"
	"github.com/castpro/castpro/internal/handler/dto"
	"github.com/castpro/castpro/internal/service"
)

// ItemHandler handles HTTP requests for item operations.
// All routes require an authenticated caller in the request context.
type ItemHandler struct {
	svc    *service.ItemService
	logger *slog.Logger
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(svc *service.ItemService, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /items/.
// Returns items system-wide, unfiltered by ownership.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	skip := 0
	if s := query.Get("skip"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed >= 0 {
			skip = parsed
		}
	}

	limit := 100
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	items, err := h.svc.List(r.Context(), skip, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToItemListResponse(items))
}

// Create handles POST /items/.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	caller := auth.MustUserFromContext(r.Context())

	item, err := h.svc.Create(r.Context(), caller, service.CreateItemInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("item_created",
		"item_id", item.ID,
		"owner_id", item.OwnerID,
	)

	writeJSON(w, http.StatusOK, dto.ToItemResponse(item))
}

// Get handles GET /items/{id}.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToItemResponse(item))
}

// Update handles PUT /items/{id} with a partial body.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	caller := auth.MustUserFromContext(r.Context())

	item, err := h.svc.Update(r.Context(), caller, id, service.UpdateItemInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("item_updated",
		"item_id", item.ID,
		"owner_id", item.OwnerID,
	)

	writeJSON(w, http.StatusOK, dto.ToItemResponse(item))
}

// Delete handles DELETE /items/{id}.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	caller := auth.MustUserFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), caller, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("item_deleted", "item_id", id, "user_id", caller.ID)

	writeJSON(w, http.StatusOK, dto.DeleteItemResponse{OK: true})
}

// itemID parses the {id} path parameter.
func (h *ItemHandler) itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID")
		return 0, false
	}
	return id, true
}

// handleServiceError maps item service errors to HTTP responses.
func (h *ItemHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "Item not found")
	case errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusForbidden, "Not enough permissions")
	case errors.Is(err, service.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, "Title is required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "An internal error occurred")
	}
}
