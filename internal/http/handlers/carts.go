package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GovarthanahariN/CartProjectBE/internal/apperr"
	"github.com/GovarthanahariN/CartProjectBE/internal/http/respond"
	"github.com/GovarthanahariN/CartProjectBE/internal/logging"
	"github.com/GovarthanahariN/CartProjectBE/internal/models"
	"github.com/GovarthanahariN/CartProjectBE/internal/models/dto"
	"github.com/GovarthanahariN/CartProjectBE/internal/validation"
)

// CartService is the part of carts.Service the handler drives.
type CartService interface {
	ListAvailable(ctx context.Context) ([]models.Cart, error)
	ListByRow(ctx context.Context, row string) ([]models.Cart, error)
	GetByID(ctx context.Context, id string) (models.Cart, error)
	UpdateStatus(ctx context.Context, id, status string) (models.Cart, error)
	UpdateBattery(ctx context.Context, id string, level float64) (models.Cart, error)
	Seed(ctx context.Context, carts []models.Cart) ([]models.Cart, error)
}

// CartHandler owns the /api/carts endpoints.
type CartHandler struct {
	svc CartService
}

// NewCartHandler constructs the handler.
func NewCartHandler(svc CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

// Register attaches cart routes to r. Static paths are matched before {id}.
func (h *CartHandler) Register(r chi.Router) {
	r.Route("/api/carts", func(r chi.Router) {
		r.Get("/available", h.handleAvailable)
		r.Get("/row/{row}", h.handleByRow)
		r.Post("/addSampleCarts", h.handleAddSamples)
		r.Get("/{id}", h.handleGet)
		r.Patch("/{id}/status", h.handleStatus)
		r.Patch("/{id}/battery", h.handleBattery)
	})
}

func (h *CartHandler) handleAvailable(w http.ResponseWriter, r *http.Request) {
	carts, err := h.svc.ListAvailable(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, carts)
}

func (h *CartHandler) handleByRow(w http.ResponseWriter, r *http.Request) {
	carts, err := h.svc.ListByRow(r.Context(), chi.URLParam(r, "row"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, carts)
}

func (h *CartHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	cart, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, cart)
}

func (h *CartHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	cart, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, cart)
}

func (h *CartHandler) handleBattery(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateBatteryRequest
	// A missing or non-numeric level is reported like an out-of-range one.
	if err := decodeJSON(r, &req); err != nil || req.BatteryLevel == nil {
		respond.Error(w, http.StatusBadRequest, "Battery level must be between 0 and 100")
		return
	}
	cart, err := h.svc.UpdateBattery(r.Context(), chi.URLParam(r, "id"), *req.BatteryLevel)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, cart)
}

func (h *CartHandler) handleAddSamples(w http.ResponseWriter, r *http.Request) {
	var req []dto.NewCart
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respond.Error(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	batch := make([]models.Cart, 0, len(req))
	for _, nc := range req {
		if err := validation.Struct(nc); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		batch = append(batch, nc.ToModel())
	}
	created, err := h.svc.Seed(r.Context(), batch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (h *CartHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch apperr.KindOf(err) {
	case apperr.NotFound:
		respond.Error(w, http.StatusNotFound, apperr.MessageOf(err, "Cart not found"))
	case apperr.Validation, apperr.Conflict, apperr.Unauthorized:
		respond.Error(w, http.StatusBadRequest, apperr.MessageOf(err, msgInvalidBody))
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("cart request failed")
		respond.Error(w, http.StatusInternalServerError, apperr.MessageOf(err, msgServerError))
	}
}
