package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/artistgrade/storefront/internal/core/domain"
)

const identitiesCollection = "identities"

// IdentityRepository stores accounts linked to an identity provider.
type IdentityRepository struct {
	coll *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{coll: db.Collection(identitiesCollection)}
}

type mongoIdentity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Provider  string             `bson:"provider"`
	Subject   string             `bson:"subject"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email,omitempty"`
	Picture   string             `bson:"picture,omitempty"`
	Role      string             `bson:"role"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (mi mongoIdentity) toDomain() *domain.Identity {
	return &domain.Identity{
		ID:        mi.ID.Hex(),
		Provider:  mi.Provider,
		Subject:   mi.Subject,
		Name:      mi.Name,
		Email:     mi.Email,
		Picture:   mi.Picture,
		Role:      mi.Role,
		CreatedAt: mi.CreatedAt.UTC(),
	}
}

// FindOrCreate upserts the identity keyed by (provider, subject). Profile
// fields are refreshed on every login; role and creation time are only set
// on insert.
func (r *IdentityRepository) FindOrCreate(ctx context.Context, profile domain.ProviderProfile) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"provider": profile.Provider, "subject": profile.Subject}
	update := bson.M{
		"$set": bson.M{
			"name":    profile.Name,
			"email":   profile.Email,
			"picture": profile.Picture,
		},
		"$setOnInsert": bson.M{
			"role":       domain.RoleUser,
			"created_at": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var mi mongoIdentity
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mi)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// Two first logins raced on the upsert; the loser reads the winner's document.
		err = r.coll.FindOne(ctx, filter).Decode(&mi)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert identity: %w", err)
	}
	return mi.toDomain(), nil
}

func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	oid, err := objectID(id, domain.ErrUserNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mi mongoIdentity
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mi); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return mi.toDomain(), nil
}

func (r *IdentityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "provider", Value: 1}, {Key: "subject", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_provider_subject"),
	})
	return err
}
