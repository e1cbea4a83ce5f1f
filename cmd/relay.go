package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docwright/docwright/internal/logging"
	"github.com/docwright/docwright/internal/relay"
)

var relayPort int

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run the completion relay to the upstream model provider",
	RunE:  runRelay,
}

func init() {
	relayCmd.Flags().IntVarP(&relayPort, "port", "p", 0, "Relay port (default from config or $PORT)")
}

func runRelay(_ *cobra.Command, _ []string) error {
	rc := appCfg.Relay
	if relayPort != 0 {
		rc.Port = relayPort
	}

	srv := relay.New(relay.Config{
		APIKey:   rc.APIKey,
		Upstream: rc.Upstream,
		Model:    rc.Model,
		Port:     rc.Port,
	}, nil)

	fmt.Printf("%s docwright relay\n", logo)
	fmt.Printf("  Upstream: %s\n", rc.Upstream)
	fmt.Printf("  Listen:   http://localhost%s\n", srv.Addr())
	if rc.APIKey == "" {
		fmt.Println("Warning: OPENAI_API_KEY is not set; completions will fail with 500")
	} else {
		fmt.Printf("  Key:      %s\n", logging.Mask(rc.APIKey))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}
