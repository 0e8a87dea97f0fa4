package repository

import (
	"context"
	"errors"

	"blogposts/internal/post/model"
	"blogposts/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	Coll *mongo.Collection
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{Coll: coll}
}

func (r *MongoRepository) Insert(ctx context.Context, post *model.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	post.Normalize()
	_, err := r.Coll.InsertOne(ctx, post)
	if err != nil {
		logger.Sugar.Errorf("Failed to insert post: %v", err)
	}
	return err
}

func (r *MongoRepository) FindPage(ctx context.Context, skip, limit int64) ([]model.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.Coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		logger.Sugar.Errorf("Failed to list posts (skip=%d): %v", skip, err)
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []model.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		logger.Sugar.Errorf("Failed to decode posts: %v", err)
		return nil, err
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.Coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		logger.Sugar.Errorf("Failed to count posts: %v", err)
	}
	return n, err
}

func (r *MongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	var post model.Post
	err := r.Coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get post %s: %v", id.Hex(), err)
		return nil, err
	}
	post.Normalize()
	return &post, nil
}

func (r *MongoRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.Coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Sugar.Errorf("Failed to delete post %s: %v", id.Hex(), err)
	}
	return err
}

func (r *MongoRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, patch model.UpdatePostRequest) (*model.Post, error) {
	if patch.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Body != nil {
		set["body"] = *patch.Body
	}
	if patch.Tags != nil {
		set["tags"] = append([]string{}, *patch.Tags...)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post model.Post
	err := r.Coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to update post %s: %v", id.Hex(), err)
		return nil, err
	}
	post.Normalize()
	return &post, nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.Coll.Database().Client().Ping(ctx, nil)
}
