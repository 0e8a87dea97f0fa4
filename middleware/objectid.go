package middleware

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckObjectID rejects requests whose {id} path value is not a 24-character
// hex ObjectID with a bodyless 404. It does not check that the post exists.
func CheckObjectID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !primitive.IsValidObjectID(r.PathValue("id")) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
