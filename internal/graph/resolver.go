package graph

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"bookgraph/internal/book"
	"bookgraph/internal/httpx"
)

// Resolver is the root GraphQL resolver.
type Resolver struct {
	books   *book.Service
	l       *zap.Logger
	metrics *Metrics
}

// NewResolver creates a root resolver over the given service. metrics may be nil.
func NewResolver(books *book.Service, l *zap.Logger, metrics *Metrics) *Resolver {
	return &Resolver{books: books, l: l, metrics: metrics}
}

// AddBookInput is the input of the addBook mutation.
type AddBookInput struct {
	Author string
	Title  string
}

// EditBookInput is the input of the editBook mutation.
type EditBookInput struct {
	Author string
	ID     string
	Title  string
}

// DeleteBookInput is the input of the deleteBook mutation.
type DeleteBookInput struct {
	ID string
}

// Books resolves the books query.
func (r *Resolver) Books(ctx context.Context) (*[]*bookResolver, error) {
	start := time.Now()
	books, err := r.books.List(ctx)
	r.metrics.observe("books", start, err)

	if err != nil {
		r.logger(ctx).Error("Error fetching books", zap.Error(err))
		return nil, newOperationError("Unable to fetch books from database", err)
	}

	r.logger(ctx).Debug("Fetched books", zap.Int("count", len(books)))

	out := make([]*bookResolver, len(books))
	for i, b := range books {
		out[i] = &bookResolver{b: b, withID: true}
	}
	return &out, nil
}

// AddBook resolves the addBook mutation.
func (r *Resolver) AddBook(ctx context.Context, args struct{ Input AddBookInput }) (*bookResolver, error) {
	start := time.Now()
	b, err := r.books.Create(ctx, book.CreateInput{Title: args.Input.Title, Author: args.Input.Author})
	r.metrics.observe("addBook", start, err)

	if err != nil {
		r.logger(ctx).Error("Error adding book", zap.Error(err))
		return nil, newOperationError("Error adding book", err)
	}

	r.logger(ctx).Info("Inserted book", zap.String("id", b.ID))
	return &bookResolver{b: b, withID: true}, nil
}

// EditBook resolves the editBook mutation.
//
// Failures other than a missing storage handle are reported as a book with
// empty title and author instead of an error, for compatibility with existing clients.
func (r *Resolver) EditBook(ctx context.Context, args struct{ Input EditBookInput }) (*bookResolver, error) {
	start := time.Now()
	b, err := r.books.Update(ctx, book.UpdateInput{
		ID:     args.Input.ID,
		Title:  args.Input.Title,
		Author: args.Input.Author,
	})
	r.metrics.observe("editBook", start, err)

	if err != nil {
		if errors.Is(err, book.ErrStorageUnavailable) {
			r.logger(ctx).Error("Error updating book", zap.String("id", args.Input.ID), zap.Error(err))
			return nil, newOperationError("Error updating book", err)
		}

		r.logger(ctx).Warn("Error updating book", zap.String("id", args.Input.ID), zap.Error(err))
		return &bookResolver{}, nil
	}

	r.logger(ctx).Info("Updated book", zap.String("id", b.ID))
	return &bookResolver{b: b}, nil
}

// DeleteBook resolves the deleteBook mutation.
func (r *Resolver) DeleteBook(ctx context.Context, args struct{ Input DeleteBookInput }) (*bookResolver, error) {
	start := time.Now()
	b, err := r.books.Delete(ctx, args.Input.ID)
	r.metrics.observe("deleteBook", start, err)

	if err != nil {
		r.logger(ctx).Error("Error deleting book", zap.String("id", args.Input.ID), zap.Error(err))
		return nil, newOperationError("Error deleting book", err)
	}

	r.logger(ctx).Info("Deleted book", zap.String("id", b.ID))
	return &bookResolver{b: b}, nil
}

func (r *Resolver) logger(ctx context.Context) *zap.Logger {
	if id := httpx.RequestIDFromContext(ctx); id != "" {
		return r.l.With(zap.String("request_id", id))
	}
	return r.l
}

// bookResolver resolves the Book type.
// Only books returned by the books query and addBook expose their id.
type bookResolver struct {
	b      book.Book
	withID bool
}

func (r *bookResolver) ID() *string {
	if !r.withID {
		return nil
	}
	return &r.b.ID
}

func (r *bookResolver) Title() *string {
	return &r.b.Title
}

func (r *bookResolver) Author() *string {
	return &r.b.Author
}
