package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"backoffice/internal/domain"
)

type Deps struct {
	Tickets TicketService
	Agents  AgentDirectory
	Actions *domain.ActionCatalog
	DB      Pinger
	Static  http.Handler // served for every path not matched by the API

	CORSOrigins        []string
	RateLimitPerMinute int // 0 disables
}

func New(log zerolog.Logger, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(Recoverer(log))
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: d.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{"Location", "Content-Disposition"},
			MaxAge:         300,
		}))
	}
	if d.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(d.RateLimitPerMinute, time.Minute))
	}

	// Health
	r.Get("/healthz", Health(d.DB, log))

	r.Get("/actions", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, d.Actions)
	})

	th := NewTicketHTTP(d.Tickets, d.Agents, log)
	r.Post("/login", th.Login())
	r.Route("/tickets", func(r chi.Router) {
		r.Get("/", th.List())
		r.Post("/", th.Create())
		r.Get("/export", th.Export())
		r.Route("/{id:[0-9]+}", func(r chi.Router) {
			r.Get("/", th.Get())
			r.Put("/", th.Update())
			r.Delete("/", th.Delete())
		})
	})

	if d.Static != nil {
		r.Handle("/*", d.Static)
	}
	return r
}
