package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCloseTimeout = 5 * time.Second

// MongoStore backs the chat log with MongoDB collections: one for messages,
// one for dataset provenance keyed by session.
type MongoStore struct {
	client     *mongo.Client
	messages   *mongo.Collection
	provenance *mongo.Collection
}

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	db := client.Database(database)
	return &MongoStore{
		client:     client,
		messages:   db.Collection("messages"),
		provenance: db.Collection("datasets"),
	}, nil
}

// CreateSchema ensures the indexes the message log relies on.
func (ms *MongoStore) CreateSchema(ctx context.Context) error {
	if ms == nil || ms.messages == nil {
		return nil
	}
	_, err := ms.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: 1}},
		Options: options.Index().SetName("session_created_at"),
	})
	if err != nil {
		return err
	}
	_, err = ms.provenance.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}},
		Options: options.Index().SetName("session").SetUnique(true),
	})
	return err
}

func (ms *MongoStore) AppendMessage(ctx context.Context, msg Message) error {
	if ms == nil || ms.messages == nil {
		return nil
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	_, err := ms.messages.InsertOne(ctx, bson.M{
		"_id":        msg.ID,
		"session_id": msg.SessionID,
		"role":       msg.Role,
		"content":    msg.Content,
		"created_at": msg.CreatedAt,
	})
	return err
}

func (ms *MongoStore) Messages(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	if ms == nil || ms.messages == nil {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := ms.messages.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []Message
	for cursor.Next(ctx) {
		var doc struct {
			ID        string    `bson:"_id"`
			SessionID string    `bson:"session_id"`
			Role      string    `bson:"role"`
			Content   string    `bson:"content"`
			CreatedAt time.Time `bson:"created_at"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, Message(doc))
	}
	return out, cursor.Err()
}

func (ms *MongoStore) SaveProvenance(ctx context.Context, prov Provenance) error {
	if ms == nil || ms.provenance == nil {
		return nil
	}
	if prov.UploadedAt.IsZero() {
		prov.UploadedAt = time.Now().UTC()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := ms.provenance.ReplaceOne(ctx, bson.M{"session_id": prov.SessionID}, bson.M{
		"session_id":  prov.SessionID,
		"file_name":   prov.FileName,
		"row_count":   prov.RowCount,
		"uploaded_at": prov.UploadedAt,
	}, opts)
	return err
}

func (ms *MongoStore) Provenance(ctx context.Context, sessionID string) (*Provenance, error) {
	if ms == nil || ms.provenance == nil {
		return nil, nil
	}
	var doc struct {
		SessionID  string    `bson:"session_id"`
		FileName   string    `bson:"file_name"`
		RowCount   int       `bson:"row_count"`
		UploadedAt time.Time `bson:"uploaded_at"`
	}
	err := ms.provenance.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Provenance{
		SessionID:  doc.SessionID,
		FileName:   doc.FileName,
		RowCount:   doc.RowCount,
		UploadedAt: doc.UploadedAt,
	}, nil
}

func (ms *MongoStore) Close(context.Context) error {
	if ms == nil || ms.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), mongoCloseTimeout)
	defer cancel()
	return ms.client.Disconnect(ctx)
}

var _ ChatStore = (*MongoStore)(nil)
