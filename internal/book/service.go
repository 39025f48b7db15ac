package book

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service provides book-related operations on top of a Repository.
//
// A Service built with a nil Repository fails every call with ErrStorageUnavailable.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all stored books.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	if s.repo == nil {
		return nil, ErrStorageUnavailable
	}

	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, wrap(ErrReadFailure, err)
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// Create inserts a new book and returns it with the storage-assigned ID.
// Title and author are echoed from the input, not re-read.
func (s *Service) Create(ctx context.Context, in CreateInput) (Book, error) {
	if s.repo == nil {
		return Book{}, ErrStorageUnavailable
	}

	id, err := s.repo.Insert(ctx, in)
	if err != nil {
		return Book{}, wrap(ErrWriteFailure, err)
	}
	if id == "" {
		return Book{}, fmt.Errorf("%w: no identifier assigned", ErrWriteFailure)
	}

	return Book{ID: id, Title: in.Title, Author: in.Author}, nil
}

// Update replaces title and author of an existing book and returns the re-read record.
func (s *Service) Update(ctx context.Context, in UpdateInput) (Book, error) {
	if s.repo == nil {
		return Book{}, ErrStorageUnavailable
	}
	if err := validateID(in.ID); err != nil {
		return Book{}, err
	}

	res, err := s.repo.UpdateByID(ctx, in)
	if err != nil {
		return Book{}, wrap(ErrWriteFailure, err)
	}
	if res.Matched == 0 {
		return Book{}, ErrNotFound
	}
	if res.Modified == 0 {
		return Book{}, ErrNotModified
	}

	b, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Book{}, fmt.Errorf("%w: updated book %s disappeared", ErrReadFailure, in.ID)
		}
		return Book{}, wrap(ErrReadFailure, err)
	}
	return b, nil
}

// Delete removes an existing book and returns it as it was before deletion.
func (s *Service) Delete(ctx context.Context, id string) (Book, error) {
	if s.repo == nil {
		return Book{}, ErrStorageUnavailable
	}
	if err := validateID(id); err != nil {
		return Book{}, err
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Book{}, wrap(ErrReadFailure, err)
	}

	n, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return Book{}, wrap(ErrWriteFailure, err)
	}
	if n == 0 {
		return Book{}, fmt.Errorf("%w: book %s was not deleted", ErrWriteFailure, id)
	}
	return b, nil
}

func validateID(id string) error {
	if !primitive.IsValidObjectID(id) {
		return fmt.Errorf("%w: malformed id %q", ErrInvalidInput, id)
	}
	return nil
}

// wrap tags err with kind unless it already carries a more specific kind.
func wrap(kind, err error) error {
	if errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
