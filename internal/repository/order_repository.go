package repository

import (
	"context"
	"errors"
	"time"

	"topup-orders-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("record not found")

// OrderFilter narrows admin listings.
type OrderFilter struct {
	Status             string
	VerificationStatus string
	Page               int
	PageSize           int
}

// Mongo implementation
type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection("orders")}
}

func (m *MongoOrderRepository) Insert(ctx context.Context, o *model.Order) error {
	_, err := m.col.InsertOne(ctx, o)
	return err
}

// Replace overwrites the whole order document. Row-level atomicity is the
// store's guarantee; transition preconditions are enforced by the service.
func (m *MongoOrderRepository) Replace(ctx context.Context, o *model.Order) error {
	o.UpdatedAt = time.Now().UTC()
	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoOrderRepository) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	var res model.Order
	err := m.col.FindOne(ctx, bson.M{"_id": orderID}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

func (m *MongoOrderRepository) FindByUserID(ctx context.Context, userID string, f OrderFilter) ([]*model.Order, error) {
	filter := bson.M{"user_id": userID}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return m.find(ctx, filter, f)
}

func (m *MongoOrderRepository) FindAll(ctx context.Context, f OrderFilter) ([]*model.Order, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.VerificationStatus != "" {
		filter["verification_status"] = f.VerificationStatus
	}
	return m.find(ctx, filter, f)
}

func (m *MongoOrderRepository) Count(ctx context.Context, f OrderFilter) (int64, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.VerificationStatus != "" {
		filter["verification_status"] = f.VerificationStatus
	}
	return m.col.CountDocuments(ctx, filter)
}

func (m *MongoOrderRepository) find(ctx context.Context, filter bson.M, f OrderFilter) ([]*model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * f.PageSize)).SetLimit(int64(f.PageSize))
	}

	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Order
	for cur.Next(ctx) {
		var v model.Order
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}
