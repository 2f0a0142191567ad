package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/youruser/logostamp/internal/batch"
	"github.com/youruser/logostamp/internal/config"
)

const shutdownTimeout = 10 * time.Second

// NewEngine builds the gin engine with all routes registered.
func NewEngine(cfg *config.Config, sessions *batch.Store) *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = cfg.Server.MaxUploadBytes
	RegisterRoutes(r, NewHandler(cfg, sessions))
	return r
}

// Serve runs the HTTP service until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, cfg *config.Config) error {
	sessions := batch.NewStore(cfg.Session.TTL)
	go sessions.RunSweeper(ctx, cfg.Session.SweepInterval)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           NewEngine(cfg, sessions),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Println("starting server on http://localhost" + cfg.Addr())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
