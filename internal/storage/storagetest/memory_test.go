package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GovarthanahariN/CartProjectBE/internal/storage"
)

func TestMemoryContract(t *testing.T) {
	RunContract(t, New())
}

func TestMemoryFail(t *testing.T) {
	m := New()
	m.Fail = ErrUnavailable

	_, err := m.ListCarts(context.Background(), storage.CartFilter{})
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = m.FindByMobile(context.Background(), "+919999999999")
	assert.ErrorIs(t, err, ErrUnavailable)
}
