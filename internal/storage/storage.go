package storage

import (
	"context"
	"errors"
	"time"

	"github.com/GovarthanahariN/CartProjectBE/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// CartFilter selects carts by equality. Empty fields match everything.
type CartFilter struct {
	Status models.CartStatus
	Row    string
}

// CartUpdate is a partial write. Nil fields are left untouched; UpdatedAt is
// always written.
type CartUpdate struct {
	Status       *models.CartStatus
	BatteryLevel *int
	UpdatedAt    time.Time
}

// CartStore captures cart persistence needed by the cart service.
type CartStore interface {
	ListCarts(ctx context.Context, filter CartFilter) ([]models.Cart, error)
	FindCartByID(ctx context.Context, id string) (models.Cart, error)
	InsertCarts(ctx context.Context, carts []models.Cart) ([]models.Cart, error)
	UpdateCart(ctx context.Context, id string, update CartUpdate) (models.Cart, error)
}

// UserStore captures user persistence needed by the auth service.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByMobile(ctx context.Context, mobile string) (models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) (models.User, error)
}

// Store is a full backend: both collections plus lifecycle.
type Store interface {
	CartStore
	UserStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
