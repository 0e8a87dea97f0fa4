package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"blogposts/internal/post/model"
	"blogposts/internal/post/repository"
	"blogposts/internal/post/service"
	"blogposts/pkg/logger"
)

const maxBodyBytes = 1 << 20

var errTrailingData = errors.New("request body must contain a single JSON object")

type PostHandler struct {
	Service *service.PostService
	Timeout time.Duration
}

func NewPostHandler(service *service.PostService, timeout time.Duration) *PostHandler {
	return &PostHandler{Service: service, Timeout: timeout}
}

// CreatePost handles POST /api/posts.
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePostRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(w, service.DecodeError(err))
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	post, err := h.Service.CreatePost(ctx, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// ListPosts handles GET /api/posts?page=N.
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		page = n
	}

	ctx, cancel := h.context(r)
	defer cancel()

	posts, lastPage, err := h.Service.ListPosts(ctx, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Last-Page", strconv.FormatInt(lastPage, 10))
	writeJSON(w, http.StatusOK, posts)
}

// GetPost handles GET /api/posts/{id}.
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	post, err := h.Service.GetPost(ctx, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/{id}.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	if err := h.Service.DeletePost(ctx, r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdatePost handles PATCH /api/posts/{id}. Only title, body and tags may be
// changed; any other field rejects the request.
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req model.UpdatePostRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeValidationError(w, service.DecodeError(err))
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	post, err := h.Service.UpdatePost(ctx, r.PathValue("id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// Health reports whether the store is reachable.
func (h *PostHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	if err := h.Service.Ping(ctx); err != nil {
		logger.Sugar.Errorf("Health check failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *PostHandler) context(r *http.Request) (context.Context, context.CancelFunc) {
	if h.Timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.Timeout)
}

// fail maps service errors onto status codes. Not-found and invalid pages
// carry no body; anything unexpected is logged and reported as a 500.
func (h *PostHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr)
	case errors.Is(err, repository.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidPage):
		w.WriteHeader(http.StatusBadRequest)
	default:
		logger.Sugar.Errorf("Handler: %s %s failed: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: http.StatusText(http.StatusInternalServerError)})
	}
}

// decodeBody reads exactly one JSON value into v, rejecting unknown fields and
// anything after the value. An empty body yields io.EOF.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

func writeValidationError(w http.ResponseWriter, verr *service.ValidationError) {
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "validation failed", Details: verr.Details})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Sugar.Errorf("Failed to encode response: %v", err)
	}
}
