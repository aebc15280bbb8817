package repository

import (
	"context"
	"time"

	"topup-orders-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationFilter narrows ledger listings.
type NotificationFilter struct {
	UnreadOnly    bool
	ImportantOnly bool
	Limit         int64
}

type MongoNotificationRepository struct {
	col *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{col: db.Collection("notifications")}
}

// audienceFilter scopes every ledger query: user rows are keyed by user_id,
// admin rows are shared by the whole administrator group.
func audienceFilter(aud model.Audience) bson.M {
	filter := bson.M{"recipient_type": aud.Type}
	if aud.Type == model.RecipientUser {
		filter["user_id"] = aud.UserID
	}
	return filter
}

func (m *MongoNotificationRepository) InsertMany(ctx context.Context, ns []*model.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(ns))
	for _, n := range ns {
		docs = append(docs, n)
	}
	_, err := m.col.InsertMany(ctx, docs)
	return err
}

func (m *MongoNotificationRepository) FindByAudience(ctx context.Context, aud model.Audience, f NotificationFilter) ([]*model.Notification, error) {
	filter := audienceFilter(aud)
	if f.UnreadOnly {
		filter["is_read"] = false
	}
	if f.ImportantOnly {
		filter["is_important"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Notification
	for cur.Next(ctx) {
		var v model.Notification
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

func (m *MongoNotificationRepository) CountUnread(ctx context.Context, aud model.Audience) (int64, error) {
	filter := audienceFilter(aud)
	filter["is_read"] = false
	return m.col.CountDocuments(ctx, filter)
}

// MarkRead stamps read_at on the first read only. A second call matches no
// unread document; the existence check below turns that into a no-op instead
// of a not-found error.
func (m *MongoNotificationRepository) MarkRead(ctx context.Context, aud model.Audience, id string) error {
	filter := audienceFilter(aud)
	filter["_id"] = id
	filter["is_read"] = false

	update := bson.M{"$set": bson.M{
		"is_read": true,
		"read_at": time.Now().UTC(),
	}}

	res, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	exists := audienceFilter(aud)
	exists["_id"] = id
	err = m.col.FindOne(ctx, exists).Err()
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}

func (m *MongoNotificationRepository) MarkAllRead(ctx context.Context, aud model.Audience) (int64, error) {
	filter := audienceFilter(aud)
	filter["is_read"] = false

	update := bson.M{"$set": bson.M{
		"is_read": true,
		"read_at": time.Now().UTC(),
	}}

	res, err := m.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (m *MongoNotificationRepository) Delete(ctx context.Context, aud model.Audience, id string) error {
	filter := audienceFilter(aud)
	filter["_id"] = id

	res, err := m.col.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoNotificationRepository) DeleteByAudience(ctx context.Context, aud model.Audience) (int64, error) {
	res, err := m.col.DeleteMany(ctx, audienceFilter(aud))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
