package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/GovarthanahariN/CartProjectBE/internal/models"
	"github.com/GovarthanahariN/CartProjectBE/internal/storage"
)

type locationDocument struct {
	Row      string `bson:"row"`
	Position int    `bson:"position"`
}

type cartDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	CartID          string             `bson:"cartId"`
	Status          string             `bson:"status"`
	BatteryLevel    int                `bson:"batteryLevel"`
	LastMaintenance *time.Time         `bson:"lastMaintenance,omitempty"`
	Location        locationDocument   `bson:"location"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func toCartDocument(c models.Cart) cartDocument {
	return cartDocument{
		CartID:          c.CartID,
		Status:          string(c.Status),
		BatteryLevel:    c.BatteryLevel,
		LastMaintenance: c.LastMaintenance,
		Location:        locationDocument{Row: c.Location.Row, Position: c.Location.Position},
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (d cartDocument) model() models.Cart {
	return models.Cart{
		ID:              d.ID.Hex(),
		CartID:          d.CartID,
		Status:          models.CartStatus(d.Status),
		BatteryLevel:    d.BatteryLevel,
		LastMaintenance: d.LastMaintenance,
		Location:        models.Location{Row: d.Location.Row, Position: d.Location.Position},
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func cartFilter(f storage.CartFilter) bson.D {
	filter := bson.D{}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(f.Status)})
	}
	if f.Row != "" {
		filter = append(filter, bson.E{Key: "location.row", Value: f.Row})
	}
	return filter
}

// ListCarts finds all carts matching filter.
func (s *Store) ListCarts(ctx context.Context, f storage.CartFilter) ([]models.Cart, error) {
	cur, err := s.carts.Find(ctx, cartFilter(f))
	if err != nil {
		return nil, fmt.Errorf("find carts: %w", err)
	}
	var docs []cartDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode carts: %w", err)
	}
	carts := make([]models.Cart, len(docs))
	for i, d := range docs {
		carts[i] = d.model()
	}
	return carts, nil
}

// FindCartByID looks a cart up by ObjectID hex. A malformed id is reported
// as storage.ErrNotFound.
func (s *Store) FindCartByID(ctx context.Context, id string) (models.Cart, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Cart{}, storage.ErrNotFound
	}
	var doc cartDocument
	if err := s.carts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return models.Cart{}, translate(err)
	}
	return doc.model(), nil
}

// InsertCarts bulk-inserts carts and returns them with their new ids.
func (s *Store) InsertCarts(ctx context.Context, carts []models.Cart) ([]models.Cart, error) {
	docs := make([]any, len(carts))
	out := make([]models.Cart, len(carts))
	for i, c := range carts {
		d := toCartDocument(c)
		d.ID = primitive.NewObjectID()
		docs[i] = d
		out[i] = d.model()
	}
	if _, err := s.carts.InsertMany(ctx, docs); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// UpdateCart sets the non-nil fields of update and returns the new document.
func (s *Store) UpdateCart(ctx context.Context, id string, update storage.CartUpdate) (models.Cart, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Cart{}, storage.ErrNotFound
	}
	set := bson.D{{Key: "updatedAt", Value: update.UpdatedAt}}
	if update.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*update.Status)})
	}
	if update.BatteryLevel != nil {
		set = append(set, bson.E{Key: "batteryLevel", Value: *update.BatteryLevel})
	}

	var doc cartDocument
	err = s.carts.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return models.Cart{}, translate(err)
	}
	return doc.model(), nil
}
