package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book document storage.
type Repository interface {
	List(ctx context.Context) ([]Book, error)
	GetByID(ctx context.Context, id string) (Book, error)
	Insert(ctx context.Context, in CreateInput) (string, error)
	UpdateByID(ctx context.Context, in UpdateInput) (UpdateResult, error)
	DeleteByID(ctx context.Context, id string) (int64, error)
}
