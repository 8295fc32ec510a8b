package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"convertbox/internal/infra/logging"
	"convertbox/internal/infra/redis"
	"convertbox/internal/usecase"
)

// Limits carries the request-shaping knobs the router enforces.
type Limits struct {
	MaxUploadBytes    int64
	RequestsPerMinute int
}

type Server struct {
	convertUC usecase.ConvertUseCase
	uploadUC  usecase.UploadUseCase
	userUC    usecase.UserUseCase
	sessions  *SessionManager
	limiter   *redis.RateLimiter
	limits    Limits
	log       *zerolog.Logger
}

func NewServer(
	convertUC usecase.ConvertUseCase,
	uploadUC usecase.UploadUseCase,
	userUC usecase.UserUseCase,
	sessions *SessionManager,
	limiter *redis.RateLimiter,
	limits Limits,
	logger *zerolog.Logger,
) *Server {
	if limits.MaxUploadBytes <= 0 {
		limits.MaxUploadBytes = 256 << 20
	}
	if limits.RequestsPerMinute <= 0 {
		limits.RequestsPerMinute = 30
	}
	return &Server{
		convertUC: convertUC,
		uploadUC:  uploadUC,
		userUC:    userUC,
		sessions:  sessions,
		limiter:   limiter,
		limits:    limits,
		log:       logger,
	}
}

// Router assembles the full route tree. /healthz and /metrics stay outside
// the session middleware so probes and scrapes never create users.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.traceMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimitMiddleware)
			r.Post("/convert/{kind}", s.handleConvert)
			r.Post("/images", s.handleImages)
			r.Post("/videos", s.handleVideos)
			r.Post("/compress", s.handleCompress)
		})

		r.Get("/task_status/{job_id}", s.handleTaskStatus)
		r.Get("/download/{upload_id}", s.handleDownload)
		r.Get("/delete/{upload_id}", s.handleDelete)
		r.Get("/files", s.handleFiles)
		r.Get("/logout", s.handleLogout)
	})

	return r
}

func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithTraceID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimitMiddleware applies a per-user fixed window to the upload routes.
// Redis trouble fails open: dropping uploads because the limiter is down
// would be worse than briefly not limiting.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := UserID(r.Context())
		key := redis.UserRouteKey(userID, r.URL.Path)

		ok, err := s.limiter.Allow(r.Context(), key, s.limits.RequestsPerMinute, time.Minute)
		if err != nil {
			s.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
