package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hourbeam/hourbeam/pkg/usecase"
	"github.com/hourbeam/hourbeam/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

func New(uc *usecase.UseCases) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api/v1/users/{userID}", func(r chi.Router) {
		r.Post("/preview", s.previewHandler)
		r.Post("/commit", s.commitHandler)
		r.Get("/history", s.historyHandler)

		r.Route("/mappings", func(r chi.Router) {
			r.Get("/", s.listMappingsHandler)
			r.Post("/", s.createMappingHandler)
			r.Put("/{mappingID}", s.updateMappingHandler)
			r.Delete("/{mappingID}", s.deactivateMappingHandler)
		})

		r.Route("/recurring-mappings", func(r chi.Router) {
			r.Get("/", s.listRecurringMappingsHandler)
			r.Post("/", s.createRecurringMappingHandler)
			r.Delete("/{mappingID}", s.deactivateRecurringMappingHandler)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
