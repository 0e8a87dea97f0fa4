package repository

import (
	"context"
	"testing"
	"time"

	"blogposts/internal/post/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func postDoc(id primitive.ObjectID, title, body string, tags []string, published time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: title},
		{Key: "body", Value: body},
		{Key: "tags", Value: tags},
		{Key: "publishedDate", Value: primitive.NewDateTimeFromTime(published)},
	}
}

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	published := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	mt.Run("insert assigns id", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		post := &model.Post{Title: "A", Body: "hello", Tags: []string{"x"}, PublishedDate: published}
		require.NoError(mt, repo.Insert(context.Background(), post))
		assert.False(mt, post.ID.IsZero())
	})

	mt.Run("insert error", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))

		err := repo.Insert(context.Background(), &model.Post{Title: "A", Body: "b", Tags: []string{}})
		assert.Error(mt, err)
	})

	mt.Run("find page", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		newer, older := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			postDoc(newer, "second", "b2", []string{"go"}, published),
			postDoc(older, "first", "b1", nil, published),
		))

		posts, err := repo.FindPage(context.Background(), 0, model.PageSize)
		require.NoError(mt, err)
		require.Len(mt, posts, 2)
		assert.Equal(mt, newer, posts[0].ID)
		assert.Equal(mt, "second", posts[0].Title)
		assert.Equal(mt, published, posts[0].PublishedDate)
		assert.Equal(mt, []string{}, posts[1].Tags)
	})

	mt.Run("find page empty", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		posts, err := repo.FindPage(context.Background(), 10, model.PageSize)
		require.NoError(mt, err)
		assert.NotNil(mt, posts)
		assert.Empty(mt, posts)
	})

	mt.Run("count", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "n", Value: int64(23)}},
		))

		n, err := repo.Count(context.Background())
		require.NoError(mt, err)
		assert.EqualValues(mt, 23, n)
	})

	mt.Run("find by id", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			postDoc(id, "A", "hello", []string{"x"}, published),
		))

		post, err := repo.FindByID(context.Background(), id)
		require.NoError(mt, err)
		assert.Equal(mt, id, post.ID)
		assert.Equal(mt, "hello", post.Body)
		assert.Equal(mt, []string{"x"}, post.Tags)
	})

	mt.Run("find by id missing", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("find by id command error", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 2, Name: "BadValue", Message: "boom",
		}))

		_, err := repo.FindByID(context.Background(), primitive.NewObjectID())
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("delete missing is not an error", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		assert.NoError(mt, repo.DeleteByID(context.Background(), primitive.NewObjectID()))
	})

	mt.Run("update returns new document", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: postDoc(id, "B", "hello", []string{"x"}, published)},
		))

		title := "B"
		post, err := repo.UpdateByID(context.Background(), id, model.UpdatePostRequest{Title: &title})
		require.NoError(mt, err)
		assert.Equal(mt, "B", post.Title)
		assert.Equal(mt, "hello", post.Body)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		body := "new"
		_, err := repo.UpdateByID(context.Background(), primitive.NewObjectID(), model.UpdatePostRequest{Body: &body})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("empty update reads the document", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			postDoc(id, "A", "hello", []string{"x"}, published),
		))

		post, err := repo.UpdateByID(context.Background(), id, model.UpdatePostRequest{})
		require.NoError(mt, err)
		assert.Equal(mt, "A", post.Title)
	})
}
