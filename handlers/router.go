package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/abdullah0325/crud-neon/middleware"
)

// NewRouter maps the routes to their handlers and wraps the router in the
// middleware chain. CORS sits outside mux so preflight requests are
// answered for every path.
func NewRouter(students *StudentHandler, health *HealthHandler, cors middleware.CORSConfig, log *zap.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/add-student", students.CreateStudent).Methods(http.MethodPost)
	r.HandleFunc("/students", students.GetStudents).Methods(http.MethodGet)
	r.HandleFunc("/students/{id}", students.GetStudent).Methods(http.MethodGet)
	r.HandleFunc("/update_students/{id}", students.UpdateStudent).Methods(http.MethodPut)
	r.HandleFunc("/delete_students/{id}", students.DeleteStudent).Methods(http.MethodDelete)

	r.HandleFunc("/health", health.Health).Methods(http.MethodGet)

	var h http.Handler = r
	h = middleware.CORS(cors)(h)
	h = middleware.Logging(log)(h)
	h = middleware.Recovery(log)(h)
	return h
}
