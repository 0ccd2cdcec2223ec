package web

import (
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "go.uber.org/zap"

    "github.com/jaminalder/othello-board/internal/app"
)

// Option configures the HTTP layer.
type Option func(*handlers)

func WithLogger(l *zap.SugaredLogger) Option {
    return func(h *handlers) {
        if l != nil {
            h.log = l
        }
    }
}

// WithHeartbeat sets the keep-alive interval of the SSE and websocket streams.
func WithHeartbeat(d time.Duration) Option {
    return func(h *handlers) {
        if d > 0 {
            h.heartbeat = d
        }
    }
}

// WithRequestLog enables chi's request logger.
func WithRequestLog() Option {
    return func(h *handlers) { h.requestLog = true }
}

// NewServer wires routes and returns an http.Handler. It installs the
// service's broadcast renderer so streams receive JSON snapshots.
func NewServer(s *app.Service, opts ...Option) http.Handler {
    h := &handlers{
        svc:       s,
        tpl:       loadTemplates(),
        log:       zap.NewNop().Sugar(),
        heartbeat: 15 * time.Second,
    }
    for _, opt := range opts {
        opt(h)
    }
    s.SetRenderer(renderSnapshot)

    r := chi.NewRouter()
    r.Use(middleware.RequestID)
    if h.requestLog {
        r.Use(middleware.Logger)
    }
    r.Use(middleware.Recoverer)

    r.Get("/health", h.health)
    r.Get("/", h.index)
    r.Post("/board", h.create)
    r.Route("/board/{id}", func(r chi.Router) {
        r.Get("/", h.view)
        r.Post("/put", h.put)
        r.Post("/reverse", h.reverse)
        r.Get("/events", h.events)
        r.Get("/ws", h.ws)
    })
    r.Route("/api/boards", func(r chi.Router) {
        r.Use(requireJSON)
        r.Post("/", h.apiCreate)
        r.Get("/", h.apiList)
        r.Route("/{id}", func(r chi.Router) {
            r.Use(validBoardID)
            r.Get("/", h.apiGet)
            r.Delete("/", h.apiDelete)
            r.Post("/stones", h.apiPut)
            r.Post("/flips", h.apiReverse)
        })
    })
    return r
}
