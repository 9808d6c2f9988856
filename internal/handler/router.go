// Package handler assembles the HTTP surface: REST endpoints, the realtime
// coaching channel, and shared middleware.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Engineernoob/ai-interview-buddy/internal/handler/interview"
	"github.com/Engineernoob/ai-interview-buddy/internal/handler/meta"
	profilehandler "github.com/Engineernoob/ai-interview-buddy/internal/handler/profile"
	middlewarePkg "github.com/Engineernoob/ai-interview-buddy/internal/middleware"
	profilemodel "github.com/Engineernoob/ai-interview-buddy/internal/model/profile"
	"github.com/Engineernoob/ai-interview-buddy/internal/service/session"
)

// Options carries the request-surface configuration the router needs.
type Options struct {
	CORSOrigins []string
	MaxFileSize int64
	Meta        meta.Info
}

// NewRouter wires HTTP routes to core services.
func NewRouter(sessions *session.Manager, profiles profilemodel.Store, extractor profilemodel.Extractor, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(opts.CORSOrigins))

	metaHandler := meta.New(sessions, opts.Meta)
	profileHandler := profilehandler.New(profiles, extractor, opts.MaxFileSize)
	channelHandler := interview.New(sessions)

	metaHandler.RegisterRoutes(r)
	channelHandler.RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		profileHandler.RegisterRoutes(api)
		metaHandler.RegisterAPIRoutes(api)
	})

	return r
}
