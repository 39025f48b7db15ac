package store

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookgraph/internal/book"
)

// BookMemory keeps books in process memory. Used for development and tests.
type BookMemory struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]book.Book
}

func NewBookMemory() *BookMemory {
	return &BookMemory{docs: make(map[string]book.Book)}
}

func (r *BookMemory) List(ctx context.Context) ([]book.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]book.Book, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.docs[id])
	}
	return out, nil
}

func (r *BookMemory) GetByID(ctx context.Context, id string) (book.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.docs[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return b, nil
}

func (r *BookMemory) Insert(ctx context.Context, in book.CreateInput) (string, error) {
	id := primitive.NewObjectID().Hex()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.docs[id] = book.Book{ID: id, Title: in.Title, Author: in.Author}
	r.order = append(r.order, id)
	return id, nil
}

func (r *BookMemory) UpdateByID(ctx context.Context, in book.UpdateInput) (book.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.docs[in.ID]
	if !ok {
		return book.UpdateResult{}, nil
	}
	if b.Title == in.Title && b.Author == in.Author {
		return book.UpdateResult{Matched: 1}, nil
	}

	b.Title, b.Author = in.Title, in.Author
	r.docs[in.ID] = b
	return book.UpdateResult{Matched: 1, Modified: 1}, nil
}

func (r *BookMemory) DeleteByID(ctx context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[id]; !ok {
		return 0, nil
	}
	delete(r.docs, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return 1, nil
}

func (r *BookMemory) Ping(ctx context.Context) error { return nil }

func (r *BookMemory) Close(ctx context.Context) error { return nil }
