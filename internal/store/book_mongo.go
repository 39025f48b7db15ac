package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"bookgraph/internal/book"
)

// bookDocument is the stored shape of a book.
type bookDocument struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Title  string             `bson:"title"`
	Author string             `bson:"author"`
}

func (d bookDocument) toBook() book.Book {
	return book.Book{ID: d.ID.Hex(), Title: d.Title, Author: d.Author}
}

// BookMongo stores books in a single MongoDB collection.
type BookMongo struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
}

func NewBookMongo(client *mongo.Client, database, collection string, timeout time.Duration) *BookMongo {
	return &BookMongo{
		client:  client,
		coll:    client.Database(database).Collection(collection),
		timeout: timeout,
	}
}

// ConnectMongo connects to uri and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri).SetConnectTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

func (r *BookMongo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *BookMongo) List(ctx context.Context) ([]book.Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	cur, err := r.coll.Find(timeoutCtx, bson.D{})
	if err != nil {
		return nil, mongoErr(err)
	}

	var docs []bookDocument
	if err := cur.All(timeoutCtx, &docs); err != nil {
		return nil, mongoErr(err)
	}

	out := make([]book.Book, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toBook())
	}
	return out, nil
}

func (r *BookMongo) GetByID(ctx context.Context, id string) (book.Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return book.Book{}, book.ErrNotFound
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var d bookDocument
	if err := r.coll.FindOne(timeoutCtx, bson.D{{Key: "_id", Value: oid}}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, mongoErr(err)
	}
	return d.toBook(), nil
}

func (r *BookMongo) Insert(ctx context.Context, in book.CreateInput) (string, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.InsertOne(timeoutCtx, bookDocument{Title: in.Title, Author: in.Author})
	if err != nil {
		return "", mongoErr(err)
	}
	if res == nil {
		return "", nil
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	return oid.Hex(), nil
}

func (r *BookMongo) UpdateByID(ctx context.Context, in book.UpdateInput) (book.UpdateResult, error) {
	oid, err := primitive.ObjectIDFromHex(in.ID)
	if err != nil {
		return book.UpdateResult{}, nil
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "author", Value: in.Author},
		{Key: "title", Value: in.Title},
	}}}
	res, err := r.coll.UpdateOne(timeoutCtx, bson.D{{Key: "_id", Value: oid}}, update)
	if err != nil {
		return book.UpdateResult{}, mongoErr(err)
	}
	return book.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (r *BookMongo) DeleteByID(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(timeoutCtx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return 0, mongoErr(err)
	}
	return res.DeletedCount, nil
}

func (r *BookMongo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *BookMongo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// mongoErr maps driver errors that mean "no usable connection" to book.ErrStorageUnavailable.
func mongoErr(err error) error {
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %w", book.ErrStorageUnavailable, err)
	}
	return err
}
