package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fdg312/curo/internal/ai"
	"github.com/fdg312/curo/internal/auth"
	"github.com/fdg312/curo/internal/blob"
	"github.com/fdg312/curo/internal/config"
	"github.com/fdg312/curo/internal/consultation"
	"github.com/fdg312/curo/internal/credentials"
	"github.com/fdg312/curo/internal/export"
	"github.com/fdg312/curo/internal/storage"
	"github.com/fdg312/curo/internal/storage/memory"
	"github.com/fdg312/curo/internal/storage/postgres"
)

// Server wires storage, sessions and consultations behind one mux.
type Server struct {
	config         *config.Config
	mux            *http.ServeMux
	storage        storage.Storage
	authMiddleware *auth.Middleware
	registry       *consultation.Registry
	httpServer     *http.Server
}

func New(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}

	s.initStorage()
	s.routes()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// initStorage picks Postgres when DATABASE_URL is set, memory otherwise or
// when the connection fails.
func (s *Server) initStorage() {
	if s.config.DatabaseURL == "" {
		log.Println("INFO storage: using in-memory credentials")
		s.storage = memory.New()
		return
	}

	log.Println("INFO storage: connecting to PostgreSQL...")
	pgStorage, err := postgres.New(context.Background(), s.config.DatabaseURL)
	if err != nil {
		log.Printf("WARN storage: postgres connect failed: %v", err)
		log.Println("WARN storage: fallback to in-memory credentials")
		s.storage = memory.New()
		return
	}
	log.Println("INFO storage: PostgreSQL connected")
	s.storage = pgStorage
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	authService := auth.NewService(s.config)
	authHandler := auth.NewHandlers(authService)
	s.authMiddleware = auth.NewMiddleware(authService)

	// POST /v1/auth/session - anonymous client session
	s.mux.HandleFunc("POST /v1/auth/session", authHandler.HandleStartSession)

	credentialService := credentials.NewService(s.storage, s.config.OpenAIAPIKey)
	credentialHandler := credentials.NewHandler(credentialService)

	s.mux.HandleFunc("GET /v1/credential", credentialHandler.HandleGet)
	s.mux.HandleFunc("PUT /v1/credential", credentialHandler.HandlePut)
	s.mux.HandleFunc("DELETE /v1/credential", credentialHandler.HandleDelete)

	provider := ai.NewProvider(s.config)
	idleTTL := time.Duration(s.config.ConsultationIdleTTLMinutes) * time.Minute
	s.registry = consultation.NewRegistry(provider, credentialService, idleTTL)
	s.registry.StartSweeper(0)

	exporter := export.NewService(s.initBlobStore(), time.Duration(s.config.ExportLinkTTLSeconds)*time.Second)
	consultationHandler := consultation.NewHandler(s.registry, exporter)

	s.mux.HandleFunc("GET /v1/consultation", consultationHandler.HandleGet)
	s.mux.HandleFunc("DELETE /v1/consultation", consultationHandler.HandleClose)
	s.mux.HandleFunc("PUT /v1/consultation/input", consultationHandler.HandleUpdateInput)
	s.mux.HandleFunc("POST /v1/consultation/submit", consultationHandler.HandleSubmit)
	s.mux.HandleFunc("POST /v1/consultation/reset", consultationHandler.HandleReset)
	s.mux.HandleFunc("GET /v1/consultation/export", consultationHandler.HandleExport)
}

// initBlobStore returns nil in local mode; exports are then streamed inline.
func (s *Server) initBlobStore() blob.Store {
	log.Printf("INFO blob: initializing export store (BLOB_MODE=%s)", s.config.Blob.Mode)
	store, mode, err := blob.NewStore(s.config.Blob, log.Default())
	if err != nil {
		log.Fatalf("FATAL blob: failed to initialize export store: %v", err)
	}
	log.Printf("INFO blob: export blob mode: %s", mode)
	return store
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := "ok"
	code := http.StatusOK
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.storage.Ping(ctx); err != nil {
		log.Printf("WARN healthz: storage ping failed: %v", err)
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"status": status,
	})
}

// Handler is the mux behind the middleware chain, outermost first:
// CORS → Rate Limit → Auth → Router.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = s.authMiddleware.RequireAuth(handler)
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	addr := s.httpServer.Addr
	log.Printf("INFO server: listening on http://localhost%s", addr)
	log.Printf("INFO server: health check http://localhost%s/healthz", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Close ends every consultation and releases storage.
func (s *Server) Close() error {
	if s.registry != nil {
		s.registry.Stop()
	}
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
