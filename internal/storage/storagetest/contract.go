package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GovarthanahariN/CartProjectBE/internal/models"
	"github.com/GovarthanahariN/CartProjectBE/internal/storage"
)

// RunContract exercises the storage.Store semantics every backend must share.
// Keys are suffixed with a timestamp so runs against a live database don't collide.
func RunContract(t *testing.T, s storage.Store) {
	t.Helper()
	ctx := context.Background()
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	now := time.Now().UTC().Truncate(time.Millisecond)

	row := "R" + suffix
	carts, err := s.InsertCarts(ctx, []models.Cart{
		{CartID: "C1-" + suffix, Status: models.CartAvailable, BatteryLevel: 80, Location: models.Location{Row: row, Position: 1}, CreatedAt: now, UpdatedAt: now},
		{CartID: "C2-" + suffix, Status: models.CartInUse, BatteryLevel: 50, Location: models.Location{Row: row, Position: 2}, CreatedAt: now, UpdatedAt: now},
	})
	require.NoError(t, err)
	require.Len(t, carts, 2)
	require.NotEmpty(t, carts[0].ID)

	_, err = s.InsertCarts(ctx, []models.Cart{{CartID: "C1-" + suffix, Status: models.CartAvailable, Location: models.Location{Row: row}}})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	got, err := s.FindCartByID(ctx, carts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "C1-"+suffix, got.CartID)

	_, err = s.FindCartByID(ctx, "does-not-exist")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	byRow, err := s.ListCarts(ctx, storage.CartFilter{Row: row})
	require.NoError(t, err)
	assert.Len(t, byRow, 2)

	available, err := s.ListCarts(ctx, storage.CartFilter{Row: row, Status: models.CartAvailable})
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, carts[0].ID, available[0].ID)

	level := 42
	later := now.Add(time.Second)
	updated, err := s.UpdateCart(ctx, carts[1].ID, storage.CartUpdate{BatteryLevel: &level, UpdatedAt: later})
	require.NoError(t, err)
	assert.Equal(t, 42, updated.BatteryLevel)
	assert.Equal(t, models.CartInUse, updated.Status)
	assert.True(t, updated.UpdatedAt.Equal(later))

	_, err = s.UpdateCart(ctx, "does-not-exist", storage.CartUpdate{UpdatedAt: later})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	mobile := "+91" + suffix[len(suffix)-10:]
	user, err := s.CreateUser(ctx, models.User{Username: "contract", Mobile: mobile, PasswordHash: "h1"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, models.User{Username: "again", Mobile: mobile, PasswordHash: "h2"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	found, err := s.FindByMobile(ctx, mobile)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	reset, err := s.UpdatePassword(ctx, user.ID, "h3")
	require.NoError(t, err)
	assert.Equal(t, "h3", reset.PasswordHash)

	_, err = s.FindByMobile(ctx, "+910000000000-missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
