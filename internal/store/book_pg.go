package store

//Repository implementation (Postgres, JSONB documents)

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookgraph/internal/book"
)

// BookPG stores book documents as JSONB rows of the books table.
// The table is created by the migrations in db/migrations.
type BookPG struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewBookPG(db *pgxpool.Pool, timeout time.Duration) *BookPG {
	return &BookPG{db: db, timeout: timeout}
}

// OpenPG creates a pool for dsn and verifies it with a ping.
func OpenPG(ctx context.Context, dsn string, timeout time.Duration) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func (r *BookPG) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *BookPG) List(ctx context.Context) ([]book.Book, error) {
	const query = `
	SELECT id, doc->>'title', doc->>'author'
	FROM books
	ORDER BY created_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []book.Book{}
	for rows.Next() {
		var b book.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *BookPG) GetByID(ctx context.Context, id string) (book.Book, error) {
	const query = `
	SELECT id, doc->>'title', doc->>'author'
	FROM books
	WHERE id = $1
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var b book.Book
	err := r.db.QueryRow(timeoutCtx, query, id).Scan(&b.ID, &b.Title, &b.Author)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, err
	}
	return b, nil
}

func (r *BookPG) Insert(ctx context.Context, in book.CreateInput) (string, error) {
	const query = `
	INSERT INTO books (id, doc)
	VALUES ($1, jsonb_build_object('title', $2::text, 'author', $3::text))
	RETURNING id
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var id string
	err := r.db.QueryRow(timeoutCtx, query, primitive.NewObjectID().Hex(), in.Title, in.Author).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateByID mirrors document-store semantics: a row whose fields already
// hold the new values counts as matched but not modified.
func (r *BookPG) UpdateByID(ctx context.Context, in book.UpdateInput) (book.UpdateResult, error) {
	const query = `
	UPDATE books
	SET doc = doc || jsonb_build_object('title', $2::text, 'author', $3::text)
	WHERE id = $1
	AND (doc->>'title' IS DISTINCT FROM $2::text OR doc->>'author' IS DISTINCT FROM $3::text)
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, query, in.ID, in.Title, in.Author)
	if err != nil {
		return book.UpdateResult{}, err
	}
	if tag.RowsAffected() > 0 {
		return book.UpdateResult{Matched: tag.RowsAffected(), Modified: tag.RowsAffected()}, nil
	}

	var exists bool
	err = r.db.QueryRow(timeoutCtx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, in.ID).Scan(&exists)
	if err != nil {
		return book.UpdateResult{}, err
	}
	if exists {
		return book.UpdateResult{Matched: 1}, nil
	}
	return book.UpdateResult{}, nil
}

func (r *BookPG) DeleteByID(ctx context.Context, id string) (int64, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *BookPG) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *BookPG) Close(ctx context.Context) error {
	r.db.Close()
	return nil
}
