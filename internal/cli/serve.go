package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/examsift/examsift/internal/review"
	"github.com/spf13/cobra"
)

var (
	serveAddr string
	dataFile  string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extracted questions for review and editing",
	Long: `Serve starts the review API over a web-export data file:
- GET /api/questions returns the full question document
- POST /api/questions/update edits one question and persists the file
- GET /healthz for probes

Edits overwrite the named fields and merge metadata key by key; the
data file on disk always reflects the last accepted edit.

Example:
  examsift serve
  examsift serve --addr :9090 --data ./output/questions_web.json`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&dataFile, "data", "", "web-export JSON file backing the API (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if dataFile != "" {
		cfg.Server.DataFile = dataFile
	}

	// request logging is the server's primary output, so always info level
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	srv, err := review.NewServer(cfg.Server.DataFile, log)
	if err != nil {
		return fmt.Errorf("load review data: %w", err)
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("review server listening",
		"addr", cfg.Server.Addr,
		"data_file", cfg.Server.DataFile,
		"questions", srv.QuestionCount(),
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
