package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/GovarthanahariN/CartProjectBE/internal/models"
	"github.com/GovarthanahariN/CartProjectBE/internal/storage"
)

func TestCartFilter(t *testing.T) {
	assert.Equal(t, bson.D{}, cartFilter(storage.CartFilter{}))
	assert.Equal(t,
		bson.D{{Key: "status", Value: "available"}, {Key: "location.row", Value: "B"}},
		cartFilter(storage.CartFilter{Status: models.CartAvailable, Row: "B"}),
	)
}

func TestMalformedIDIsNotFound(t *testing.T) {
	s := &Store{}
	ctx := context.Background()

	_, err := s.FindCartByID(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.UpdateCart(ctx, "xyz", storage.CartUpdate{})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.UpdatePassword(ctx, "xyz", "hash")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
