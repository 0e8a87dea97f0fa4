package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"blogposts/internal/post/model"
	"blogposts/pkg/logger"

	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Schema is the table PostgresRepository expects. IDs are ObjectID hex
// strings so ordering by id matches insertion order, like the Mongo store.
const Schema = `
CREATE TABLE IF NOT EXISTS posts (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL,
	body           TEXT NOT NULL,
	tags           TEXT[] NOT NULL DEFAULT '{}',
	published_date TIMESTAMPTZ NOT NULL
)`

const postColumns = "id, title, body, tags, published_date"

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, Schema)
	if err != nil {
		logger.Sugar.Errorf("Failed to create posts table: %v", err)
	}
	return err
}

func (r *PostgresRepository) Insert(ctx context.Context, post *model.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	post.Normalize()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		post.ID.Hex(), post.Title, post.Body, pq.Array(post.Tags), post.PublishedDate)
	if err != nil {
		logger.Sugar.Errorf("Failed to insert post: %v", err)
	}
	return err
}

func (r *PostgresRepository) FindPage(ctx context.Context, skip, limit int64) ([]model.Post, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY id DESC LIMIT $1 OFFSET $2`, limit, skip)
	if err != nil {
		logger.Sugar.Errorf("Failed to list posts (skip=%d): %v", skip, err)
		return nil, err
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan post: %v", err)
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&n)
	if err != nil {
		logger.Sugar.Errorf("Failed to count posts: %v", err)
	}
	return n, err
}

func (r *PostgresRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id.Hex())
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get post %s: %v", id.Hex(), err)
		return nil, err
	}
	return post, nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id.Hex())
	if err != nil {
		logger.Sugar.Errorf("Failed to delete post %s: %v", id.Hex(), err)
	}
	return err
}

func (r *PostgresRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, patch model.UpdatePostRequest) (*model.Post, error) {
	if patch.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	var sets []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Body != nil {
		add("body", *patch.Body)
	}
	if patch.Tags != nil {
		add("tags", pq.Array(*patch.Tags))
	}
	args = append(args, id.Hex())

	query := fmt.Sprintf(`UPDATE posts SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), postColumns)

	post, err := scanPost(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to update post %s: %v", id.Hex(), err)
		return nil, err
	}
	return post, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*model.Post, error) {
	var (
		post model.Post
		id   string
	)
	if err := row.Scan(&id, &post.Title, &post.Body, pq.Array(&post.Tags), &post.PublishedDate); err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("stored post id %q is not an ObjectID: %w", id, err)
	}
	post.ID = oid
	post.Normalize()
	return &post, nil
}
