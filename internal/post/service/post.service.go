package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"blogposts/internal/post/model"
	"blogposts/internal/post/repository"
	"blogposts/pkg/logger"
	"blogposts/socket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidPage = errors.New("page must be a positive integer")

// Publisher receives post lifecycle events. *socket.Hub implements it.
type Publisher interface {
	Publish(msg socket.FeedMessage)
}

type PostService struct {
	Repo repository.Repository
	Hub  Publisher
	// Clock supplies publishedDate for each new post.
	Clock func() time.Time
}

func NewPostService(repo repository.Repository, hub Publisher) *PostService {
	return &PostService{Repo: repo, Hub: hub, Clock: time.Now}
}

func (s *PostService) CreatePost(ctx context.Context, req model.CreatePostRequest) (*model.Post, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:         req.Title,
		Body:          req.Body,
		Tags:          append([]string{}, req.Tags...),
		PublishedDate: s.now(),
	}
	if err := s.Repo.Insert(ctx, post); err != nil {
		return nil, err
	}

	s.publish(socket.PostCreatedType, post.ID, post)
	return post, nil
}

// ListPosts returns one page of post previews, newest first, along with the
// number of the last page.
func (s *PostService) ListPosts(ctx context.Context, page int) ([]model.Post, int64, error) {
	if page < 1 {
		return nil, 0, ErrInvalidPage
	}

	total, err := s.Repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	// A page this far out would overflow the offset; it is empty anyway.
	if int64(page-1) > math.MaxInt64/model.PageSize {
		return []model.Post{}, lastPage(total), nil
	}

	skip := int64(page-1) * model.PageSize
	posts, err := s.Repo.FindPage(ctx, skip, model.PageSize)
	if err != nil {
		return nil, 0, err
	}

	previews := make([]model.Post, len(posts))
	for i, p := range posts {
		previews[i] = p.Preview()
	}
	return previews, lastPage(total), nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (*model.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return s.Repo.FindByID(ctx, oid)
}

// DeletePost removes the post if it exists. Deleting a missing post succeeds.
func (s *PostService) DeletePost(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	if err := s.Repo.DeleteByID(ctx, oid); err != nil {
		return err
	}

	s.publish(socket.PostDeletedType, oid, nil)
	return nil
}

func (s *PostService) UpdatePost(ctx context.Context, id string, req model.UpdatePostRequest) (*model.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	post, err := s.Repo.UpdateByID(ctx, oid, req)
	if err != nil {
		return nil, err
	}

	if !req.IsEmpty() {
		s.publish(socket.PostUpdatedType, oid, post)
	}
	return post, nil
}

func (s *PostService) Ping(ctx context.Context) error {
	return s.Repo.Ping(ctx)
}

func (s *PostService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock().UTC()
}

func (s *PostService) publish(eventType string, id primitive.ObjectID, post *model.Post) {
	if s.Hub == nil {
		return
	}

	msg := socket.FeedMessage{Type: eventType, PostID: id.Hex()}
	if post != nil {
		payload, err := json.Marshal(post)
		if err != nil {
			logger.Sugar.Errorf("Failed to marshal %s event for post %s: %v", eventType, id.Hex(), err)
			return
		}
		msg.Payload = payload
	}
	s.Hub.Publish(msg)
}

func lastPage(total int64) int64 {
	if total <= 0 {
		return 1
	}
	return (total + model.PageSize - 1) / model.PageSize
}
