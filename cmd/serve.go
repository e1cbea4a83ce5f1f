package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/docwright/docwright/internal/dependency"
)

var (
	servePort     int
	serveDocument string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a document editing session over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Session port (default from config)")
	serveCmd.Flags().StringVarP(&serveDocument, "document", "d", "", "Document file (default from config)")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := appCfg
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveDocument != "" {
		cfg.Document.Path = serveDocument
	}

	container, err := dependency.New(cfg)
	if err != nil {
		return err
	}
	server := container.Server()

	fmt.Printf("%s Serving %s on %s...\n", logo, cfg.DocumentPath(), server.Addr())
	if cfg.Completion.URL == "" {
		fmt.Println("Warning: no completion endpoint; set DOCWRIGHT_COMPLETION_URL or run `docwright onboard`")
	} else {
		fmt.Printf("  Completion endpoint: %s\n", cfg.Completion.URL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })
	if saver := container.Autosave(); saver != nil {
		fmt.Printf("✓ Autosave: %s\n", saver.Spec())
		g.Go(func() error { return saver.Start(gctx) })
	} else {
		fmt.Println("Warning: autosave disabled, changes are saved on shutdown only")
	}

	fmt.Printf("%s Session running. Press Ctrl+C to stop.\n", logo)

	err = g.Wait()
	if container.Autosave() == nil && container.Document().Dirty() {
		if saveErr := container.Document().Save(); saveErr != nil {
			fmt.Fprintf(os.Stderr, "save document: %v\n", saveErr)
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "serve error: %v\n", err)
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}
