package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aseyam/attendsystem/internal/config"
	"github.com/aseyam/attendsystem/internal/database/mariadb"
	"github.com/aseyam/attendsystem/internal/database/postgres"
	"github.com/aseyam/attendsystem/internal/embedding"
	"github.com/aseyam/attendsystem/internal/gallery"
	"github.com/aseyam/attendsystem/internal/scan"
	"github.com/aseyam/attendsystem/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance API server",
	Long: `Start the attendance API server.
The server exposes the kiosk scan endpoint, student enrollment and the
gallery reload hook. It connects to PostgreSQL for the face gallery and
attendance records, and to the university timetable database for session
eligibility.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	if cfg.Timetable.DSN == "" {
		return errors.New("TIMETABLE_DATABASE_URL environment variable is required")
	}

	fmt.Printf("Connecting to PostgreSQL database...\n")
	pool, err := postgres.NewPool(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	ctx := context.Background()
	if err := pool.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	fmt.Printf("Connecting to timetable database...\n")
	timetable, err := mariadb.NewPool(cfg.Timetable.DSN)
	if err != nil {
		return fmt.Errorf("failed to initialize timetable database: %w", err)
	}
	defer timetable.Close()

	students := postgres.NewStudentRepository(pool)
	attendance := postgres.NewAttendanceRepository(pool)
	sessions := mariadb.NewSessionRepository(timetable)
	extractor := embedding.NewExtractor(cfg.Extractor.URL)

	store := gallery.NewStore(cfg.Extractor.Dim)
	scanner := scan.NewScanner(store, extractor, sessions, attendance, students, cfg.Recognizer.Threshold)

	count, err := scanner.ReloadGallery(ctx)
	if err != nil {
		return fmt.Errorf("loading gallery: %w", err)
	}
	fmt.Printf("Gallery loaded with %d enrolled students\n", count)

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(port, host, scanner, students, extractor, cfg.Extractor.Dim)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting attendance API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
