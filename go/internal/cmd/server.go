package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/nota/go/internal/rpc"
)

func setupServer(cfg ServerConfig, services *Services) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
		},
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Disposition"},
	})

	// Register services
	gamePath, gameHandler := rpc.NewGameServiceHandler(services.Game)
	r.Handle(gamePath+"*", gameHandler)

	// Websocket event stream and recordings
	services.Gateway.RegisterRoutes(r)

	setupHealthCheck(r, services)

	// Setup HTTP/2 server
	return &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: h2c.NewHandler(c.Handler(r), &http2.Server{}),
	}
}

func setupHealthCheck(r chi.Router, services *Services) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, "OK"
		if !services.Healthy() {
			status, body = http.StatusServiceUnavailable, "results feed unavailable"
		}
		w.WriteHeader(status)
		if _, err := w.Write([]byte(body)); err != nil {
			log.Warn().Err(err).Msg("failed to write health check response")
		}
	})
}
