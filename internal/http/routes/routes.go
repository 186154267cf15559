// Package routes wires handlers and middleware into one http.Handler.
package routes

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/http/handlers/health"
	"github.com/aanand-mishra/student-records/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records/internal/http/middleware"
	"github.com/aanand-mishra/student-records/internal/service"
)

// New builds the application router.
//
// ROUTE PATTERNS (Go 1.22+):
//
//	"GET /records"        — method + path
//	"PATCH /records/{id}" — {id} is read in the handler with r.PathValue("id")
//
// The /records routes sit behind the bearer-token check; /healthz does not,
// so probes need no credentials. CORS and the access log wrap everything.
func New(svc *service.Students, cfg *config.Config, log *slog.Logger) http.Handler {
	auth := middleware.Auth(cfg.Auth.Token, cfg.Auth.ProtectReads)

	router := http.NewServeMux()
	router.Handle("GET /records", auth(student.GetList(svc)))
	router.Handle("GET /records/{id}", auth(student.GetByID(svc)))
	router.Handle("POST /records", auth(student.New(svc)))
	router.Handle("PATCH /records/{id}", auth(student.Update(svc)))
	router.HandleFunc("GET /healthz", health.New(svc, log))

	return middleware.Chain(router,
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Logger(log),
	)
}
