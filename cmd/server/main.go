package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/Simplici0/deliverycost/internal/config"
	"github.com/Simplici0/deliverycost/internal/db"
	"github.com/Simplici0/deliverycost/internal/migrations"
	"github.com/Simplici0/deliverycost/internal/pricing"
)

const (
	maxBodyBytes  = 1 << 16
	shutdownGrace = 10 * time.Second
)

type server struct {
	db     *sql.DB
	driver string
	now    func() time.Time
	newID  func() string
}

func newServer(database *sql.DB, driver string) *server {
	return &server{
		db:     database,
		driver: driver,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

type quoteRequest struct {
	pricing.Request
	Title string `json:"title"`
	Notes string `json:"notes"`
}

type tariffsResponse struct {
	MinimalDeliveryCost float64                         `json:"minimal_delivery_cost"`
	MaxDistanceKm       float64                         `json:"max_distance_km"`
	MaxFragileKm        float64                         `json:"max_fragile_distance_km"`
	DistanceTiers       []pricing.DistanceTier          `json:"distance_tiers"`
	SizeSurcharges      map[string]float64              `json:"size_surcharges"`
	FragilitySurcharge  float64                         `json:"fragility_surcharge"`
	LoadMultipliers     map[pricing.ServiceLoad]float64 `json:"load_multipliers"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(ctx, database, db.Dialect(cfg.DBDriver)); err != nil {
		log.Fatalf("failed to run database migrations: %v", err)
	}

	srv := newServer(database, cfg.DBDriver)
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(cfg.AllowedOrigins()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       time.Minute,
	}

	ln, err := net.Listen("tcp", httpSrv.Addr)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", httpSrv.Addr, err)
	}

	log.Printf("listening on %s env=%s db_driver=%s", ln.Addr(), cfg.Env, cfg.DBDriver)
	if err := serve(ctx, httpSrv, ln, shutdownGrace); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
	log.Print("server stopped")
}

// serve runs httpSrv on ln until ctx is cancelled, then waits up to grace for
// in-flight requests to finish. It returns only after the drain completes, so
// callers may release shared resources such as the database afterwards.
func serve(ctx context.Context, httpSrv *http.Server, ln net.Listener, grace time.Duration) error {
	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		shutdownErr <- httpSrv.Shutdown(shutdownCtx)
	}()

	if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	// Serve returns as soon as Shutdown starts; wait for the drain.
	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *server) routes(corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/tariffs", s.handleTariffs)
		r.Post("/estimate", s.handleEstimate)
		r.Post("/quotes", s.handleQuoteCreate)
		r.Get("/quotes", s.handleQuotesList)
		r.Get("/quotes/{id}", s.handleQuoteDetail)
	})

	if len(corsOrigins) == 0 {
		return r
	}
	c := cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	})
	return c.Handler(r)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		log.Printf("req_id=%s health ping failed: %v", requestID(r.Context()), err)
		writeError(w, r, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleTariffs(w http.ResponseWriter, r *http.Request) {
	res := tariffsResponse{
		MinimalDeliveryCost: pricing.MinimalDeliveryCost,
		MaxDistanceKm:       pricing.MaxDestinationDistance,
		MaxFragileKm:        pricing.MaxFragileDistance,
		DistanceTiers:       pricing.DistanceTiers(),
		SizeSurcharges: map[string]float64{
			pricing.CargoSmall.String(): pricing.SizeSurcharge(pricing.CargoSmall),
			pricing.CargoLarge.String(): pricing.SizeSurcharge(pricing.CargoLarge),
		},
		FragilitySurcharge: pricing.FragilitySurcharge,
		LoadMultipliers:    make(map[pricing.ServiceLoad]float64),
	}
	for _, load := range pricing.ServiceLoads() {
		res.LoadMultipliers[load] = pricing.LoadMultiplier(load)
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req pricing.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	result, err := pricing.Calculate(req)
	if err != nil {
		writeCalculationError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *server) handleQuoteCreate(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	result, err := pricing.Calculate(req.Request)
	if err != nil {
		writeCalculationError(w, r, err)
		return
	}

	q, err := s.createQuote(r.Context(), strings.TrimSpace(req.Title), strings.TrimSpace(req.Notes), result)
	if err != nil {
		log.Printf("req_id=%s create quote: %v", requestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "failed to save quote")
		return
	}

	w.Header().Set("Location", "/api/quotes/"+q.ID)
	writeJSON(w, r, http.StatusCreated, q)
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	quotes, err := s.listQuotes(r.Context(), query)
	if err != nil {
		log.Printf("req_id=%s list quotes: %v", requestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "failed to load quotes")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"quotes": quotes})
}

func (s *server) handleQuoteDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, r, http.StatusNotFound, errQuoteNotFound.Error())
		return
	}

	q, err := s.getQuote(r.Context(), id)
	if errors.Is(err, errQuoteNotFound) {
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Printf("req_id=%s get quote %s: %v", requestID(r.Context()), id, err)
		writeError(w, r, http.StatusInternalServerError, "failed to load quote")
		return
	}

	writeJSON(w, r, http.StatusOK, q)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, r, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return
	}
	writeError(w, r, http.StatusBadRequest, err.Error())
}

func writeCalculationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pricing.ErrBusinessRule):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, pricing.ErrMissingField), errors.Is(err, pricing.ErrInvalidRange):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		log.Printf("req_id=%s calculate: %v", requestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "calculation failed")
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}
