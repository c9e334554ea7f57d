package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/GovarthanahariN/CartProjectBE/internal/models"
	"github.com/GovarthanahariN/CartProjectBE/internal/storage"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Mobile       string             `bson:"mobilenum"`
	Password     string             `bson:"password"`
	OTP          string             `bson:"otp,omitempty"`
	OTPExpiresAt *time.Time         `bson:"otpExpiresAt,omitempty"`
}

func (d userDocument) model() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Mobile:       d.Mobile,
		PasswordHash: d.Password,
		OTP:          d.OTP,
		OTPExpiresAt: d.OTPExpiresAt,
	}
}

// CreateUser inserts user; a duplicate mobile number yields storage.ErrAlreadyExists.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	doc := userDocument{
		ID:       primitive.NewObjectID(),
		Username: user.Username,
		Mobile:   user.Mobile,
		Password: user.PasswordHash,
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return models.User{}, translate(err)
	}
	return doc.model(), nil
}

// FindByMobile fetches a user by canonical mobile number.
func (s *Store) FindByMobile(ctx context.Context, mobile string) (models.User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, bson.M{"mobilenum": mobile}).Decode(&doc); err != nil {
		return models.User{}, translate(err)
	}
	return doc.model(), nil
}

// UpdatePassword overwrites the stored hash and returns the updated user.
func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, storage.ErrNotFound
	}
	var doc userDocument
	err = s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.D{{Key: "$set", Value: bson.D{{Key: "password", Value: passwordHash}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return models.User{}, translate(err)
	}
	return doc.model(), nil
}
