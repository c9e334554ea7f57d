package dto

import (
	"time"

	"github.com/GovarthanahariN/CartProjectBE/internal/models"
)

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateBatteryRequest keeps the level as a pointer so a missing field is
// distinguishable from zero.
type UpdateBatteryRequest struct {
	BatteryLevel *float64 `json:"batteryLevel"`
}

// NewCart is one entry of an addSampleCarts body. Omitted status and battery
// fall back to the model defaults.
type NewCart struct {
	CartID          string     `json:"cartId" validate:"required"`
	Status          string     `json:"status"`
	BatteryLevel    *int       `json:"batteryLevel"`
	LastMaintenance *time.Time `json:"lastMaintenance"`
	Location        struct {
		Row      string `json:"row" validate:"required"`
		Position *int   `json:"position" validate:"required"`
	} `json:"location"`
}

// ToModel applies defaults and returns the cart to insert.
func (n NewCart) ToModel() models.Cart {
	cart := models.Cart{
		CartID:          n.CartID,
		Status:          models.CartStatus(n.Status),
		BatteryLevel:    models.DefaultBatteryLevel,
		LastMaintenance: n.LastMaintenance,
		Location:        models.Location{Row: n.Location.Row},
	}
	if cart.Status == "" {
		cart.Status = models.CartAvailable
	}
	if n.BatteryLevel != nil {
		cart.BatteryLevel = *n.BatteryLevel
	}
	if n.Location.Position != nil {
		cart.Location.Position = *n.Location.Position
	}
	return cart
}
