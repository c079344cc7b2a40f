package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/formseal/formseal/internal/builder"
	"github.com/formseal/formseal/internal/config"
	"github.com/formseal/formseal/internal/httpapi"
	"github.com/formseal/formseal/internal/mcp"
	"github.com/formseal/formseal/internal/template"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the run mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// In stdio mode, redirect log output to stderr to avoid interfering
		// with the MCP protocol
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(os.NewFile(0, os.DevNull))
		}
	} else {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// openStore picks the storage backend from the configuration
func openStore(cfg *config.Config) (template.Store, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return template.NewMemStore(), nil
	case config.StorageFile:
		return template.NewFileStore(filepath.Join(cfg.DataDir, "templates"))
	case config.StorageSQLite:
		return template.NewSQLiteStore(filepath.Join(cfg.DataDir, "formseal.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage)
	}
}

// runServerMode runs the HTTP API with graceful shutdown on signals
func runServerMode(cfg *config.Config, service *builder.Service) {
	api := httpapi.NewServer(service, cfg.MaxFileSize, log.Default())
	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on http://%s", cfg.Address())
		serverErrCh <- srv.ListenAndServe()
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

// runStdioMode runs the MCP server over standard I/O
func runStdioMode(ctx context.Context, server *mcp.Server) {
	// The parent process controls our lifecycle; exit cleanly when stdin
	// closes or on error
	if err := server.Run(ctx); err != nil {
		if os.Getenv("DEBUG") != "" {
			log.Printf("Server error: %v", err)
		}
		os.Exit(1)
	}
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && cfg.IsServerMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	service := builder.NewService(store, cfg.MaxFileSize, log.Default())

	if cfg.IsServerMode() {
		runServerMode(cfg, service)
		return
	}

	mcpServer, err := mcp.NewServer(cfg, service)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runStdioMode(ctx, mcpServer)
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("formseal\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
