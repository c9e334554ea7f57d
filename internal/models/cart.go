package models

import "time"

// CartStatus is the operational state of a cart.
type CartStatus string

const (
	CartAvailable   CartStatus = "available"
	CartInUse       CartStatus = "in-use"
	CartMaintenance CartStatus = "maintenance"
)

// DefaultBatteryLevel is assigned to carts created without a reading.
const DefaultBatteryLevel = 100

// Valid reports whether s is one of the known statuses.
func (s CartStatus) Valid() bool {
	switch s {
	case CartAvailable, CartInUse, CartMaintenance:
		return true
	}
	return false
}

// Location pins a cart to a parking row and slot.
type Location struct {
	Row      string `json:"row" validate:"required"`
	Position int    `json:"position" validate:"gte=0"`
}

// Cart is one physical cart in the fleet.
type Cart struct {
	ID              string     `json:"_id"`
	CartID          string     `json:"cartId" validate:"required"`
	Status          CartStatus `json:"status" validate:"oneof=available in-use maintenance"`
	BatteryLevel    int        `json:"batteryLevel" validate:"gte=0,lte=100"`
	LastMaintenance *time.Time `json:"lastMaintenance,omitempty"`
	Location        Location   `json:"location"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
