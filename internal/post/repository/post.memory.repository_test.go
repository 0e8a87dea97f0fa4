package repository

import (
	"context"
	"testing"

	"blogposts/internal/post/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strPtr(s string) *string { return &s }

func TestMemoryRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	post := &model.Post{Title: "A", Body: "hello", Tags: []string{"x"}}
	require.NoError(t, repo.Insert(ctx, post))
	require.False(t, post.ID.IsZero(), "insert assigns an id")

	got, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, []string{"x"}, got.Tags)

	updated, err := repo.UpdateByID(ctx, post.ID, model.UpdatePostRequest{Title: strPtr("B")})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Title)
	assert.Equal(t, "hello", updated.Body)

	unchanged, err := repo.UpdateByID(ctx, post.ID, model.UpdatePostRequest{})
	require.NoError(t, err)
	assert.Equal(t, updated, unchanged)

	require.NoError(t, repo.DeleteByID(ctx, post.ID))
	_, err = repo.FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is not an error.
	assert.NoError(t, repo.DeleteByID(ctx, post.ID))

	_, err = repo.UpdateByID(ctx, post.ID, model.UpdatePostRequest{Title: strPtr("C")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepositoryFindPageOrdersByIDDescending(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	var ids []primitive.ObjectID
	for i := 0; i < 25; i++ {
		p := &model.Post{Title: "t", Body: "b", Tags: []string{}}
		require.NoError(t, repo.Insert(ctx, p))
		ids = append(ids, p.ID)
	}

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 25, n)

	first, err := repo.FindPage(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, first, 10)
	assert.Equal(t, ids[24], first[0].ID)
	assert.Equal(t, ids[15], first[9].ID)

	last, err := repo.FindPage(ctx, 20, 10)
	require.NoError(t, err)
	require.Len(t, last, 5)
	assert.Equal(t, ids[0], last[4].ID)

	empty, err := repo.FindPage(ctx, 30, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMemoryRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	p := &model.Post{Title: "t", Body: "b", Tags: []string{"go"}}
	require.NoError(t, repo.Insert(ctx, p))
	p.Tags[0] = "mutated"

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, got.Tags)
}
