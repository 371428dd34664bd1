package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/algolite/algolite/api"
	"github.com/algolite/algolite/internal/engine"
)

func main() {
	// Define command-line flags
	var (
		help     = flag.Bool("help", false, "Show help message")
		version  = flag.Bool("version", false, "Show version information")
		port     = flag.String("port", "9200", "Port to run the server on")
		dbPath   = flag.String("db", "./algolite.db", "Path to the SQLite database file")
		logLevel = flag.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
		pretty   = flag.Bool("pretty", false, "Human-readable console log output")
	)

	flag.Parse()

	// Handle help flag
	if *help {
		fmt.Printf("Algolite - An offline Algolia API emulator\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s                          # Start server on default port 9200\n", os.Args[0])
		fmt.Printf("  %s --port 9000              # Start server on port 9000\n", os.Args[0])
		fmt.Printf("  %s --db /tmp/algolite.db    # Use custom database file\n", os.Args[0])
		return
	}

	// Handle version flag
	if *version {
		fmt.Printf("Algolite v1.0.0\n")
		fmt.Printf("Offline Algolia API emulator with filters, facets and replica sorting\n")
		return
	}

	logger := newLogger(*logLevel, *pretty)

	logger.Info().Str("db", *dbPath).Msg("Opening database")
	searchEngine, err := engine.NewEngine(*dbPath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize engine")
	}
	defer func() {
		if err := searchEngine.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close engine")
		}
	}()

	// Initialize Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// Setup API routes
	api.SetupRoutes(router, searchEngine, logger)

	// Start the server
	logger.Info().Str("port", *port).Msg("Starting server")
	if err := router.Run(":" + *port); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

func newLogger(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(lvl).With().Timestamp().Logger()
}
