package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-cod-stats/internal/httpapi"
	"github.com/pable/go-cod-stats/internal/logging"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the loaded matches as a local JSON API",
	Long: `Start an HTTP server exposing /api/health, /api/options, /api/view,
/api/matches, /api/summary, /api/sessions, /api/correlations, /api/maps,
/api/hours and POST /api/cache/clear. Ingestion runs in the background;
data routes answer 503 until it completes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv := &http.Server{
		Addr: addr,
		Handler: httpapi.New(s.orch, httpapi.Options{
			SessionGap:     cfg.Analysis.SessionGap,
			MinSessionSize: cfg.Analysis.MinSessionSize,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		res := s.orch.Load(ctx)
		if res.Err != nil {
			logging.Error().Err(res.Err).Msg("initial load failed; POST /api/cache/clear to retry")
			return
		}
		logging.Info().Int("matches", res.Count).Bool("from_cache", res.FromCache).Msg("matches ready")
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logging.Info().Str("addr", addr).Msg("serving")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}
