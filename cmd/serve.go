package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quillforge/quill/internal/builtin"
	"github.com/quillforge/quill/internal/config"
	"github.com/quillforge/quill/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve <document>",
	Short: "Preview a document with live reload",
	Long: `Start the preview server: the document renders on every request, its
directory is watched, and connected browsers reload when a watched file
changes.

Examples:
  quill serve paper.md
  quill serve paper.md --port 3000`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "port to serve on")
	serveCmd.Flags().String("host", "localhost", "host to bind to")
	bindFlags(serveCmd.Flags(), map[string]string{
		"port": "server.port",
		"host": "server.host",
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	log := newLogger()

	reg, err := builtin.Registry()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, log, reg, args[0])
	return srv.Start(ctx)
}
