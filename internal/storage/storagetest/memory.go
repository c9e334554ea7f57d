// Package storagetest provides an in-memory storage.Store for tests.
package storagetest

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/GovarthanahariN/CartProjectBE/internal/models"
	"github.com/GovarthanahariN/CartProjectBE/internal/storage"
)

var _ storage.Store = (*Memory)(nil)

// Memory mirrors the unique-key and not-found behaviour of the real backends.
// Set Fail to make every call return that error.
type Memory struct {
	mu     sync.Mutex
	nextID int
	carts  []models.Cart
	users  []models.User
	Fail   error
}

// New returns an empty store.
func New() *Memory {
	return &Memory{}
}

func (m *Memory) id() string {
	m.nextID++
	return "id-" + strconv.Itoa(m.nextID)
}

func (m *Memory) Ping(context.Context) error  { return m.Fail }
func (m *Memory) Close(context.Context) error { return nil }

func (m *Memory) ListCarts(_ context.Context, f storage.CartFilter) ([]models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	out := []models.Cart{}
	for _, c := range m.carts {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Row != "" && c.Location.Row != f.Row {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *Memory) FindCartByID(_ context.Context, id string) (models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return models.Cart{}, m.Fail
	}
	for _, c := range m.carts {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Cart{}, storage.ErrNotFound
}

func (m *Memory) InsertCarts(_ context.Context, carts []models.Cart) ([]models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	seen := map[string]bool{}
	for _, c := range m.carts {
		seen[c.CartID] = true
	}
	for _, c := range carts {
		if seen[c.CartID] {
			return nil, storage.ErrAlreadyExists
		}
		seen[c.CartID] = true
	}
	out := make([]models.Cart, len(carts))
	for i, c := range carts {
		c.ID = m.id()
		out[i] = c
	}
	m.carts = append(m.carts, out...)
	return out, nil
}

func (m *Memory) UpdateCart(_ context.Context, id string, u storage.CartUpdate) (models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return models.Cart{}, m.Fail
	}
	for i := range m.carts {
		c := &m.carts[i]
		if c.ID != id {
			continue
		}
		if u.Status != nil {
			c.Status = *u.Status
		}
		if u.BatteryLevel != nil {
			c.BatteryLevel = *u.BatteryLevel
		}
		c.UpdatedAt = u.UpdatedAt
		return *c, nil
	}
	return models.Cart{}, storage.ErrNotFound
}

func (m *Memory) CreateUser(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return models.User{}, m.Fail
	}
	for _, u := range m.users {
		if u.Mobile == user.Mobile {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	user.ID = m.id()
	m.users = append(m.users, user)
	return user, nil
}

func (m *Memory) FindByMobile(_ context.Context, mobile string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return models.User{}, m.Fail
	}
	for _, u := range m.users {
		if u.Mobile == mobile {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (m *Memory) UpdatePassword(_ context.Context, id, hash string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return models.User{}, m.Fail
	}
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].PasswordHash = hash
			return m.users[i], nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// Users returns a snapshot of stored users.
func (m *Memory) Users() []models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.User(nil), m.users...)
}

// ErrUnavailable is a convenience failure for Fail.
var ErrUnavailable = errors.New("store unavailable")
