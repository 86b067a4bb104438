// Package main is the entry point for the pianosteps API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/james-see/pianosteps/pkg/api"
	"github.com/james-see/pianosteps/pkg/logging"
	"go.uber.org/zap"
)

func main() {
	port := flag.Int("port", 8080, "Server port")
	level := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	maxUpload := flag.Int64("max-upload", api.DefaultMaxUpload, "Largest accepted upload in bytes")
	librarySize := flag.Int("library-size", api.DefaultLibrarySize, "Songs kept in memory")
	flag.Parse()

	log, err := logging.New(*level, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	fmt.Printf("Starting pianosteps API server on port %d...\n", *port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", *port)

	err = api.StartServer(*port,
		api.WithLogger(log),
		api.WithMaxUpload(*maxUpload),
		api.WithLibrary(api.NewLibrary(*librarySize)),
	)
	if err != nil {
		log.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}
