// Package carts implements the fleet operations over cart records.
package carts

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/GovarthanahariN/CartProjectBE/internal/apperr"
	"github.com/GovarthanahariN/CartProjectBE/internal/logging"
	"github.com/GovarthanahariN/CartProjectBE/internal/models"
	"github.com/GovarthanahariN/CartProjectBE/internal/storage"
	"github.com/GovarthanahariN/CartProjectBE/internal/validation"
)

const (
	msgNotFound       = "Cart not found"
	msgInvalidStatus  = "Invalid status value"
	msgInvalidBattery = "Battery level must be between 0 and 100"
)

// SampleCarts is inserted by Seed when the caller supplies no carts.
func SampleCarts() []models.Cart {
	return []models.Cart{
		{CartID: "CART A", Status: models.CartAvailable, BatteryLevel: 80, Location: models.Location{Row: "A", Position: 1}},
	}
}

// Service reads and mutates carts.
type Service struct {
	store storage.CartStore
	clock *clock
}

// NewService builds a service over store. now may be nil.
func NewService(store storage.CartStore, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, clock: &clock{now: now}}
}

// ListAvailable returns every cart whose status is available.
func (s *Service) ListAvailable(ctx context.Context) ([]models.Cart, error) {
	carts, err := s.store.ListCarts(ctx, storage.CartFilter{Status: models.CartAvailable})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to retrieve available carts", err)
	}
	return carts, nil
}

// ListByRow returns every cart parked in row.
func (s *Service) ListByRow(ctx context.Context, row string) ([]models.Cart, error) {
	carts, err := s.store.ListCarts(ctx, storage.CartFilter{Row: row})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to retrieve carts by row", err)
	}
	return carts, nil
}

// GetByID returns one cart.
func (s *Service) GetByID(ctx context.Context, id string) (models.Cart, error) {
	cart, err := s.store.FindCartByID(ctx, id)
	if err != nil {
		return models.Cart{}, storeErr(err, "Failed to retrieve cart")
	}
	return cart, nil
}

// UpdateStatus sets the status of cart id.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (models.Cart, error) {
	st := models.CartStatus(status)
	if !st.Valid() {
		return models.Cart{}, apperr.New(apperr.Validation, msgInvalidStatus)
	}
	cart, err := s.store.UpdateCart(ctx, id, storage.CartUpdate{Status: &st, UpdatedAt: s.clock.Now()})
	if err != nil {
		return models.Cart{}, storeErr(err, "Failed to update cart status")
	}
	logging.Ctx(ctx).Info().Str("cart", cart.CartID).Str("status", status).Msg("cart status updated")
	return cart, nil
}

// UpdateBattery sets the battery percentage of cart id. level must be a
// whole number in [0, 100].
func (s *Service) UpdateBattery(ctx context.Context, id string, level float64) (models.Cart, error) {
	if math.IsNaN(level) || level < 0 || level > 100 || level != math.Trunc(level) {
		return models.Cart{}, apperr.New(apperr.Validation, msgInvalidBattery)
	}
	pct := int(level)
	cart, err := s.store.UpdateCart(ctx, id, storage.CartUpdate{BatteryLevel: &pct, UpdatedAt: s.clock.Now()})
	if err != nil {
		return models.Cart{}, storeErr(err, "Failed to update battery level")
	}
	return cart, nil
}

// Seed validates and bulk-inserts carts, or SampleCarts when carts is empty.
func (s *Service) Seed(ctx context.Context, carts []models.Cart) ([]models.Cart, error) {
	if len(carts) == 0 {
		carts = SampleCarts()
	}
	now := s.clock.Now()
	batch := make([]models.Cart, len(carts))
	for i, c := range carts {
		if err := validation.Struct(c); err != nil {
			return nil, apperr.Wrap(apperr.Validation, err.Error(), err)
		}
		c.CreatedAt, c.UpdatedAt = now, now
		batch[i] = c
	}
	created, err := s.store.InsertCarts(ctx, batch)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, apperr.Wrap(apperr.Conflict, "Cart already exists", err)
		}
		return nil, apperr.Wrap(apperr.Internal, "Failed to add sample carts", err)
	}
	logging.Ctx(ctx).Info().Int("count", len(created)).Msg("carts seeded")
	return created, nil
}

func storeErr(err error, failMsg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.New(apperr.NotFound, msgNotFound)
	}
	return apperr.Wrap(apperr.Internal, failMsg, err)
}

// clock hands out millisecond timestamps that strictly increase, so
// successive updates always move updatedAt forward.
type clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC().Truncate(time.Millisecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Millisecond)
	}
	c.last = t
	return t
}
