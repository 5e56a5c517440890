package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lms-client/internal/app"
	"lms-client/internal/config"
	"lms-client/internal/domain"
	transport "lms-client/internal/transport/http"
	"github.com/spf13/cobra"
)

// NewServeCmd runs the live dashboard feed: the aggregation is re-run on an
// interval and pushed to websocket clients.
func NewServeCmd(configPath *string) *cobra.Command {
	envPort := os.Getenv("PORT")
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live results dashboard feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath, port)
		},
	}
	cmd.Flags().StringVar(&port, "port", envPort, "port to listen on")
	return cmd
}

func runServe(ctx context.Context, configPath, portFlag string) error {
	env, err := newEnv(configPath)
	if err != nil {
		return err
	}
	defer env.Close()

	viewer, token, err := env.session.Current(ctx)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = env.cfg.Serve.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	refresh := config.TTLDuration(env.cfg.Serve.Refresh, time.Minute)
	dashboard := app.NewDashboard(env.agg, viewer, token, refresh)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go dashboard.Run(runCtx)

	wsHandler := transport.NewWSHandler(dashboard)
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("serving dashboard feed for %s on :%s", viewer.UserID, finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	// Fresh passes are pointless once we are shutting down; also drop the
	// per-view result cache like the instructor dashboard does on unmount.
	cancel()
	env.results.Clear()
	if viewer.Role == domain.RoleInstructor {
		if err := env.hints.Clear(context.Background()); err != nil {
			log.Printf("failed to clear result hints: %v", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
