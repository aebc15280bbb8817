package repository

import (
	"context"

	"topup-orders-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Read-only: the catalog is managed by another service, this one only needs
// package prices and names when an order is placed.
type MongoProductRepository struct {
	col *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{col: db.Collection("topup_packages")}
}

func (m *MongoProductRepository) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var res model.Product
	err := m.col.FindOne(ctx, bson.M{"_id": productID}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}
