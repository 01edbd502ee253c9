// Package server provides the HTTP REST API for the membership workflow.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andrei/membership-portal/internal/config"
	"github.com/andrei/membership-portal/internal/db"
	"github.com/andrei/membership-portal/internal/server/middleware"
	"github.com/andrei/membership-portal/internal/server/ratelimit"
	"github.com/andrei/membership-portal/internal/workflow"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	apps        *workflow.ApplicationService
	interviews  *workflow.InterviewService
	jwtService  *JWTService
	rateLimiter *ratelimit.Limiter
}

// Config holds server configuration
type Config struct {
	Port        int
	DatabaseURL string
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	s := &Server{db: database}
	s.jwtService = NewJWTService(jwtConfig)
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	// Wire the domain core. The dispatcher fans events out to the
	// notification stub and to the interview -> application status bridge.
	gate := workflow.NewGate(workflow.DefaultTable())
	clock := workflow.SystemClock()
	dispatcher := workflow.NewDispatcher(workflow.LogEmitter{})

	appStore := db.NewApplicationStore(database)
	ivStore := db.NewInterviewStore(database)
	s.apps = workflow.NewApplicationService(appStore, gate, clock, dispatcher)
	s.interviews = workflow.NewInterviewService(ivStore, appStore, gate, clock, dispatcher)

	dispatcher.Register(workflow.EmitterFunc(func(ctx context.Context, e workflow.Event) {
		if e.Name != workflow.EventInterviewCreated {
			return
		}
		if err := s.apps.OnInterviewCreated(ctx, e.ApplicationID); err != nil {
			log.Printf("[events] failed to mark application %s interview_scheduled: %v", e.ApplicationID, err)
		}
	}))

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	authed := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	mux.Handle("/", authed(s.apiRoutes()))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// apiRoutes returns the authenticated route set. Served behind the auth
// middleware; role and ownership checks live in the domain layer.
func (s *Server) apiRoutes() *http.ServeMux {
	protected := http.NewServeMux()
	protected.HandleFunc("POST /applications/save", s.handleSaveDraft)
	protected.HandleFunc("POST /applications/submit", s.handleSubmit)
	protected.HandleFunc("POST /applications/withdraw", s.handleWithdraw)
	protected.HandleFunc("GET /applications/my-application", s.handleMyApplication)
	protected.HandleFunc("GET /applications/stats", s.handleStats)
	protected.HandleFunc("PUT /applications/{id}/review", s.handleReview)
	protected.HandleFunc("GET /applications/{id}/schedule", s.handleSchedule)

	protected.HandleFunc("POST /interviews", s.handleCreateInterview)
	protected.HandleFunc("GET /interviews/my-interviews", s.handleMyInterviews)
	protected.HandleFunc("GET /interviews/upcoming", s.handleUpcoming)
	protected.HandleFunc("GET /interviews/past", s.handlePast)
	protected.HandleFunc("GET /interviews/next", s.handleNextInterview)
	protected.HandleFunc("PUT /interviews/{id}/confirm", s.handleConfirm)
	protected.HandleFunc("POST /interviews/{id}/reschedule-request", s.handleRescheduleRequest)
	protected.HandleFunc("PUT /interviews/{id}/cancel", s.handleCancel)
	protected.HandleFunc("PUT /interviews/{id}/complete", s.handleComplete)
	protected.HandleFunc("PUT /interviews/{id}/no-show", s.handleNoShow)
	protected.HandleFunc("PUT /interviews/{id}/feedback", s.handleFeedback)
	return protected
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// envelope is the JSON response wrapper for every API reply.
type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

// errorBody carries the stable machine-readable kind next to the display
// message.
type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// jsonResponse writes a successful JSON envelope
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON envelope with an explicit kind
func (s *Server) errorResponse(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := envelope{Success: false, Error: &errorBody{Kind: kind, Message: message}}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// domainError maps a workflow error onto the envelope
func (s *Server) domainError(w http.ResponseWriter, err error) {
	s.errorResponse(w, HTTPStatus(err), ErrorKind(err), err.Error())
}

// extractClientID extracts the client identifier from the request.
// For now this uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}
	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))
	s.errorResponse(w, http.StatusTooManyRequests, "rate_limit_exceeded",
		"Rate limit exceeded. Please try again later.")
}
