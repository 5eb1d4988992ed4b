// Package main is the entry point for the salem game server. It only
// handles dependency injection and server initialization; no game logic
// belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/duskfall-games/salem/server/internal/auth"
	"github.com/duskfall-games/salem/server/internal/config"
	"github.com/duskfall-games/salem/server/internal/infra/storage"
	"github.com/duskfall-games/salem/server/internal/network"
	"github.com/duskfall-games/salem/server/internal/platform/logger"
	"github.com/duskfall-games/salem/server/internal/platform/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.NewLogger()
	if cfg.Debug {
		log = logger.NewDebugLogger()
	}
	defer log.Sync()

	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		log.Errorf("failed to initialize sqlite: %v", err)
		os.Exit(1)
	}
	users := storage.NewUsersRepo(db)
	archive := storage.NewArchive(db, log)

	registry := network.NewRegistry(log, archive, users, cfg.Debug)
	tokens := auth.NewTokens(cfg.JWTSecret, time.Hour)
	admin := network.NewAdminAPI(registry, users, tokens, cfg.AdminUser, cfg.AdminPass, log)
	gate := &identityGate{users: users, debug: cfg.Debug}

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	router.Get("/game", func(w http.ResponseWriter, r *http.Request) {
		serveGame(registry, gate, log, w, r)
	})
	router.Method(http.MethodGet, "/metrics", metrics.Handler())
	admin.Routes(router)

	server := &http.Server{Addr: cfg.Addr, Handler: router}
	go func() {
		log.Infof("listening on %s (debug=%v)", cfg.Addr, cfg.Debug)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("server failed: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http shutdown: %v", err)
	}
	registry.Shutdown()
	archive.Close()
	if err := db.Close(); err != nil {
		log.Errorf("closing database: %v", err)
	}
}

var errNoCredentials = errors.New("no credentials")

// identityGate resolves the player identity on the upgrade request:
// HTTP Basic against the users table, or a minted PlayerN in debug mode.
type identityGate struct {
	users   *storage.UsersRepo
	debug   bool
	counter atomic.Int64
}

func (g *identityGate) identify(r *http.Request) (string, error) {
	if g.debug {
		return "Player" + strconv.FormatInt(g.counter.Add(1), 10), nil
	}
	name, password, ok := r.BasicAuth()
	if !ok {
		return "", errNoCredentials
	}
	if err := g.users.Authenticate(r.Context(), name, password); err != nil {
		return "", err
	}
	return name, nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The browser client is served from another origin; the cors
		// middleware scopes the REST side.
		return true
	},
}

// serveGame authenticates and upgrades one player connection.
func serveGame(reg *network.Registry, gate *identityGate, log *logger.Logger, w http.ResponseWriter, r *http.Request) {
	identity, err := gate.identify(r)
	if err != nil {
		status := http.StatusUnauthorized
		switch {
		case errors.Is(err, storage.ErrBanned):
			status = http.StatusForbidden
		case errors.Is(err, storage.ErrBadCredentials), errors.Is(err, errNoCredentials):
			w.Header().Set("WWW-Authenticate", `Basic realm="salem"`)
		default:
			log.Errorf("identity check failed: %v", err)
			status = http.StatusInternalServerError
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("failed to upgrade websocket connection: %v", err)
		return
	}

	client := network.NewClient(reg, conn, log)

	// Allow collection of memory referenced by the caller by doing all
	// work in new goroutines.
	go client.WritePump()
	go client.ReadPump(identity)
}
