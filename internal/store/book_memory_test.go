package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookgraph/internal/book"
)

func TestBookMemory(t *testing.T) {
	testBackend(t, NewBookMemory())
}

func TestBookMemory_ConcurrentInserts(t *testing.T) {
	repo := NewBookMemory()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Insert(ctx, book.CreateInput{Title: "t", Author: "a"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	books, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, n)

	seen := make(map[string]bool, n)
	for _, b := range books {
		assert.False(t, seen[b.ID], "duplicate id %s", b.ID)
		seen[b.ID] = true
	}
}
