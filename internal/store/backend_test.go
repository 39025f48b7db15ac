package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookgraph/internal/book"
)

// testBackend runs the behavior shared by all backends against an empty repository.
func testBackend(t *testing.T, repo Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, repo.Ping(ctx))
	})

	t.Run("empty list", func(t *testing.T) {
		books, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	var duneID string

	t.Run("insert assigns object ids", func(t *testing.T) {
		id, err := repo.Insert(ctx, book.CreateInput{Title: "Dune", Author: "Herbert"})
		require.NoError(t, err)
		require.True(t, primitive.IsValidObjectID(id), "id %q", id)
		duneID = id

		other, err := repo.Insert(ctx, book.CreateInput{Title: "Solaris", Author: "Lem"})
		require.NoError(t, err)
		assert.NotEqual(t, duneID, other)

		books, err := repo.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []book.Book{
			{ID: duneID, Title: "Dune", Author: "Herbert"},
			{ID: other, Title: "Solaris", Author: "Lem"},
		}, books)
	})

	t.Run("get by id", func(t *testing.T) {
		b, err := repo.GetByID(ctx, duneID)
		require.NoError(t, err)
		assert.Equal(t, book.Book{ID: duneID, Title: "Dune", Author: "Herbert"}, b)

		_, err = repo.GetByID(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, book.ErrNotFound)
	})

	t.Run("update", func(t *testing.T) {
		in := book.UpdateInput{ID: duneID, Title: "Dune Messiah", Author: "Herbert"}

		res, err := repo.UpdateByID(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, book.UpdateResult{Matched: 1, Modified: 1}, res)

		res, err = repo.UpdateByID(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, book.UpdateResult{Matched: 1}, res, "same values must not count as modified")

		res, err = repo.UpdateByID(ctx, book.UpdateInput{ID: primitive.NewObjectID().Hex(), Title: "x", Author: "y"})
		require.NoError(t, err)
		assert.Equal(t, book.UpdateResult{}, res)

		b, err := repo.GetByID(ctx, duneID)
		require.NoError(t, err)
		assert.Equal(t, "Dune Messiah", b.Title)
	})

	t.Run("delete", func(t *testing.T) {
		n, err := repo.DeleteByID(ctx, duneID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = repo.DeleteByID(ctx, duneID)
		require.NoError(t, err)
		assert.Zero(t, n)

		_, err = repo.GetByID(ctx, duneID)
		assert.ErrorIs(t, err, book.ErrNotFound)

		books, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})
}
