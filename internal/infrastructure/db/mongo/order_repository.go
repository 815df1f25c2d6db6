package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/artistgrade/storefront/internal/core/domain"
)

const (
	collectionOrders   = "orders"
	collectionCounters = "counters"

	orderCounterID = "orders"

	indexOrderID        = "uniq_order_id"
	indexIdempotencyKey = "uniq_idempotency_key"
)

type OrderRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		col:      db.Collection(collectionOrders),
		counters: db.Collection(collectionCounters),
	}
}

type mongoCustomer struct {
	FullName string `bson:"full_name"`
	Email    string `bson:"email"`
	Phone    string `bson:"phone"`
	Address  string `bson:"address"`
	City     string `bson:"city"`
	State    string `bson:"state"`
	Zip      string `bson:"zip"`
}

type mongoLineItem struct {
	ProductID string  `bson:"product_id,omitempty"`
	Name      string  `bson:"name"`
	Price     float64 `bson:"price"`
	Quantity  int     `bson:"quantity"`
}

type mongoOrder struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	OrderID        string             `bson:"order_id"`
	UserID         string             `bson:"user_id,omitempty"`
	Customer       mongoCustomer      `bson:"customer"`
	TransactionID  string             `bson:"transaction_id"`
	Items          []mongoLineItem    `bson:"items"`
	TotalAmount    float64            `bson:"total_amount"`
	Status         string             `bson:"status"`
	IdempotencyKey string             `bson:"idempotency_key,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func toMongoOrder(o *domain.Order) mongoOrder {
	items := make([]mongoLineItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, mongoLineItem(it))
	}
	return mongoOrder{
		OrderID:        o.ID,
		UserID:         o.UserID,
		Customer:       mongoCustomer(o.Customer),
		TransactionID:  o.TransactionID,
		Items:          items,
		TotalAmount:    o.TotalAmount,
		Status:         string(o.Status),
		IdempotencyKey: o.IdempotencyKey,
		CreatedAt:      o.CreatedAt.UTC(),
	}
}

func (mo mongoOrder) toDomain() *domain.Order {
	items := make([]domain.LineItem, 0, len(mo.Items))
	for _, it := range mo.Items {
		items = append(items, domain.LineItem(it))
	}
	return &domain.Order{
		ID:             mo.OrderID,
		UserID:         mo.UserID,
		Customer:       domain.Customer(mo.Customer),
		TransactionID:  mo.TransactionID,
		Items:          items,
		TotalAmount:    mo.TotalAmount,
		Status:         domain.OrderStatus(mo.Status),
		IdempotencyKey: mo.IdempotencyKey,
		CreatedAt:      mo.CreatedAt.UTC(),
	}
}

// NextSequence atomically increments the order counter document, creating
// it on first use.
func (r *OrderRepository) NextSequence(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	filter := bson.M{"_id": orderCounterID}
	update := bson.M{"$inc": bson.M{"seq": int64(1)}}

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// Concurrent first upserts; the document exists now.
		err = r.counters.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	}
	if err != nil {
		return 0, fmt.Errorf("next order sequence: %w", err)
	}
	return doc.Seq, nil
}

// Create inserts a new order document.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toMongoOrder(o)); err != nil {
		return classifyOrderInsertError(err)
	}
	return nil
}

// classifyOrderInsertError tells an order id collision apart from a second
// submission carrying the same idempotency key.
func classifyOrderInsertError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert order: %w", err)
	}
	if strings.Contains(err.Error(), indexIdempotencyKey) {
		return domain.ErrDuplicateSubmission
	}
	return domain.ErrDuplicateOrderID
}

func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	return r.findOne(ctx, bson.M{"order_id": orderID})
}

func (r *OrderRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	return r.findOne(ctx, bson.M{"idempotency_key": key})
}

func (r *OrderRepository) findOne(ctx context.Context, filter bson.M) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mo mongoOrder
	err := r.col.FindOne(ctx, filter).Decode(&mo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return mo.toDomain(), nil
}

// List returns all orders, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var docs []mongoOrder
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	orders := make([]*domain.Order, 0, len(docs))
	for _, d := range docs {
		orders = append(orders, d.toDomain())
	}
	return orders, nil
}

// UpdateStatus only touches the status field; line items and total are
// never rewritten after creation.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"order_id": orderID}, bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, orderID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, bson.M{})
}

// EnsureIndexes creates the order indexes and makes sure the counter is not
// behind the orders already stored (e.g. after importing existing data).
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetUnique(true).SetName(indexOrderID)},
		{Keys: bson.D{{Key: "idempotency_key", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true).SetName(indexIdempotencyKey)},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return err
	}

	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("count orders: %w", err)
	}
	_, err = r.counters.UpdateOne(ctx,
		bson.M{"_id": orderCounterID},
		bson.M{"$max": bson.M{"seq": n}},
		options.Update().SetUpsert(true),
	)
	return err
}
