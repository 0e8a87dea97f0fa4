package repository

import (
	"context"
	"errors"

	"blogposts/internal/post/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotFound = errors.New("post not found")

// Repository is the storage contract for posts. Implementations assign the
// post ID on Insert and return ErrNotFound when a lookup or update matches
// nothing.
type Repository interface {
	Insert(ctx context.Context, post *model.Post) error
	FindPage(ctx context.Context, skip, limit int64) ([]model.Post, error)
	Count(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	UpdateByID(ctx context.Context, id primitive.ObjectID, patch model.UpdatePostRequest) (*model.Post, error)
	Ping(ctx context.Context) error
}
