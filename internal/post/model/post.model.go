package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PageSize       = 10
	BodyPreviewLen = 200
	Ellipsis       = "..."
)

type Post struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Body          string             `bson:"body" json:"body"`
	Tags          []string           `bson:"tags" json:"tags"`
	PublishedDate time.Time          `bson:"publishedDate" json:"publishedDate"`
}

// Normalize makes sure tags serialize as an array rather than null.
func (p *Post) Normalize() {
	if p.Tags == nil {
		p.Tags = []string{}
	}
}

// Preview returns a copy of the post with its body cut to BodyPreviewLen
// characters. Bodies of BodyPreviewLen characters or more get an ellipsis.
func (p Post) Preview() Post {
	runes := []rune(p.Body)
	if len(runes) >= BodyPreviewLen {
		p.Body = string(runes[:BodyPreviewLen]) + Ellipsis
	}
	p.Tags = append([]string{}, p.Tags...)
	return p
}

type CreatePostRequest struct {
	Title string   `json:"title" validate:"required"`
	Body  string   `json:"body" validate:"required"`
	Tags  []string `json:"tags" validate:"required,dive,required"`
}

// UpdatePostRequest lists the fields a PATCH may touch. Nil means untouched.
type UpdatePostRequest struct {
	Title *string   `json:"title" validate:"omitnil,min=1"`
	Body  *string   `json:"body" validate:"omitnil,min=1"`
	Tags  *[]string `json:"tags" validate:"omitnil,dive,required"`
}

func (r UpdatePostRequest) IsEmpty() bool {
	return r.Title == nil && r.Body == nil && r.Tags == nil
}

type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}
