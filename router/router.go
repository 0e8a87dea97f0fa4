package router

import (
	"net/http"
	"time"

	postHandler "blogposts/internal/post"
	"blogposts/internal/post/service"
	"blogposts/middleware"
	"blogposts/pkg/metrics"
	"blogposts/socket"

	"github.com/prometheus/client_golang/prometheus"
)

type Deps struct {
	Service        *service.PostService
	Hub            *socket.Hub
	Metrics        *metrics.HTTPMetrics
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
	CORSOrigin     string
}

func Setup(d Deps) http.Handler {
	mux := http.NewServeMux()

	// REST API
	posts := postHandler.NewPostHandler(d.Service, d.RequestTimeout)
	checkID := func(h http.HandlerFunc) http.Handler { return middleware.CheckObjectID(h) }

	mux.HandleFunc("POST /api/posts", posts.CreatePost)
	mux.HandleFunc("GET /api/posts", posts.ListPosts)
	mux.Handle("GET /api/posts/{id}", checkID(posts.GetPost))
	mux.Handle("DELETE /api/posts/{id}", checkID(posts.DeletePost))
	mux.Handle("PATCH /api/posts/{id}", checkID(posts.UpdatePost))

	// WebSocket feed
	if d.Hub != nil {
		mux.HandleFunc("GET /ws/posts", func(w http.ResponseWriter, r *http.Request) {
			socket.ServeWs(d.Hub, w, r)
		})
	}

	// Operations
	mux.HandleFunc("GET /healthz", posts.Health)
	if d.Gatherer != nil {
		mux.Handle("GET /metrics", metrics.Handler(d.Gatherer))
	}

	var handler http.Handler = mux
	if d.Metrics != nil {
		handler = middleware.Metrics(d.Metrics, handler)
	}
	origin := d.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	handler = middleware.CORSMiddleware(origin, handler)
	handler = middleware.Recoverer(handler)
	return middleware.RequestLogger(handler)
}
