package repository

import (
	"context"
	"sort"
	"sync"

	"blogposts/internal/post/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository keeps posts in a map. It backs STORE_DRIVER=memory for
// local development and the handler tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	posts map[primitive.ObjectID]model.Post
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{posts: make(map[primitive.ObjectID]model.Post)}
}

func (r *MemoryRepository) Insert(_ context.Context, post *model.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	post.Normalize()

	r.mu.Lock()
	r.posts[post.ID] = clonePost(*post)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) FindPage(_ context.Context, skip, limit int64) ([]model.Post, error) {
	r.mu.RLock()
	all := make([]model.Post, 0, len(r.posts))
	for _, p := range r.posts {
		all = append(all, clonePost(p))
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].ID.Hex() > all[j].ID.Hex()
	})

	if skip >= int64(len(all)) {
		return []model.Post{}, nil
	}
	end := skip + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[skip:end], nil
}

func (r *MemoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.posts)), nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id primitive.ObjectID) (*model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := clonePost(p)
	return &out, nil
}

func (r *MemoryRepository) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	delete(r.posts, id)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) UpdateByID(_ context.Context, id primitive.ObjectID, patch model.UpdatePostRequest) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Body != nil {
		p.Body = *patch.Body
	}
	if patch.Tags != nil {
		p.Tags = append([]string{}, *patch.Tags...)
	}
	r.posts[id] = p

	out := clonePost(p)
	return &out, nil
}

func (r *MemoryRepository) Ping(context.Context) error {
	return nil
}

func clonePost(p model.Post) model.Post {
	p.Tags = append([]string{}, p.Tags...)
	return p
}
