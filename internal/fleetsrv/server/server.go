package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/fleetmanage/fleetmanage/internal/common/apperrors"
	"github.com/fleetmanage/fleetmanage/internal/common/httpx"
	"github.com/fleetmanage/fleetmanage/internal/common/middleware"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/apis"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/auth"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/config"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/gate"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	ServerVersion = "Fleet Server: 0.3.0"
	APIVersion    = "v1"
)

var ErrNotReady = apperrors.New("service not ready").SetStatusCode(http.StatusServiceUnavailable).SetReason("not_ready")

type Pinger interface {
	Ping(ctx context.Context) error
}

// Options are the components the server is assembled from. Metrics and
// Health are optional.
type Options struct {
	API      *apis.API
	Verifier *auth.Verifier
	Gate     *gate.Gate
	Metrics  *metrics.Metrics
	Health   Pinger
}

type FleetServer struct {
	Router *chi.Mux
	opts   Options
}

func CreateNewServer(opts Options) (*FleetServer, error) {
	if opts.API == nil || opts.Verifier == nil || opts.Gate == nil {
		return nil, errors.New("server requires api, verifier and gate")
	}
	s := &FleetServer{opts: opts}
	s.Router = chi.NewRouter()
	return s, nil
}

// MountHandlers installs the middleware chain and the routes. Credentials are
// verified before the gate runs, and the gate runs before any handler.
func (s *FleetServer) MountHandlers() {
	s.Router.Use(middleware.RequestLogger)
	s.Router.Use(middleware.PanicHandler)
	if config.Config().HandleCORS {
		s.Router.Use(s.HandleCORS)
	}
	s.Router.Use(s.opts.Verifier.Authenticate)
	s.Router.Use(s.opts.Gate.Middleware)

	s.Router.Mount("/api", s.opts.API.Router())
	s.Router.Get("/version", s.getVersion)
	s.Router.Get("/healthz", s.getHealth)
	if s.opts.Metrics != nil {
		s.Router.Handle("/metrics", s.opts.Metrics.Handler())
	}

	if zerolog.GlobalLevel() <= zerolog.TraceLevel {
		walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			log.Trace().Str("method", method).Str("route", route).Msg("route")
			return nil
		}
		if err := chi.Walk(s.Router, walkFunc); err != nil {
			log.Error().Err(err).Msg("Error walking router")
		}
	}
}

type GetVersionRsp struct {
	ServerVersion string `json:"serverVersion"`
	ApiVersion    string `json:"apiVersion"`
}

func (s *FleetServer) getVersion(w http.ResponseWriter, r *http.Request) {
	log.Ctx(r.Context()).Debug().Msg("GetVersion")
	rsp := &GetVersionRsp{
		ServerVersion: ServerVersion,
		ApiVersion:    APIVersion,
	}
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, rsp)
}

func (s *FleetServer) getHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.opts.Health != nil {
		if err := s.opts.Health.Ping(ctx); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("health check failed")
			httpx.SendError(w, ErrNotReady)
			return
		}
	}
	httpx.SendJsonRsp(ctx, w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (s *FleetServer) HandleCORS(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   config.Config().AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "Accept-Encoding"},
		ExposedHeaders:   []string{"Location", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})(next)
}
