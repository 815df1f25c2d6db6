package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/artistgrade/storefront/internal/core/domain"
)

const collectionRequests = "custom_requests"

type CustomRequestRepository struct {
	col *mongo.Collection
}

func NewCustomRequestRepository(db *mongo.Database) *CustomRequestRepository {
	return &CustomRequestRepository{col: db.Collection(collectionRequests)}
}

type mongoCustomRequest struct {
	ID        string      `bson:"_id"`
	Name      string      `bson:"name"`
	Email     string      `bson:"email"`
	Product   string      `bson:"product"`
	Category  string      `bson:"category,omitempty"`
	Details   string      `bson:"details,omitempty"`
	Image     *mongoImage `bson:"image,omitempty"`
	CreatedAt time.Time   `bson:"created_at"`
}

func (r *CustomRequestRepository) Create(ctx context.Context, req *domain.CustomRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoCustomRequest{
		ID:        req.ID,
		Name:      req.Name,
		Email:     req.Email,
		Product:   req.Product,
		Category:  req.Category,
		Details:   req.Details,
		CreatedAt: req.CreatedAt.UTC(),
	}
	if !req.Image.IsZero() {
		doc.Image = &mongoImage{URL: req.Image.URL, Handle: req.Image.Handle}
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert custom request: %w", err)
	}
	return nil
}
