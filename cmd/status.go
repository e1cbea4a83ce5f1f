package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docwright/docwright/internal/document"
	"github.com/docwright/docwright/internal/logging"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show docwright status",
	RunE:  runStatus,
}

func mark(path string) string {
	if _, err := os.Stat(path); err == nil {
		return "✓"
	}
	return "✗"
}

func setting(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("%s docwright Status\n\n", logo)

	fmt.Printf("Config:      %s %s\n", cfgPath, mark(cfgPath))
	doc := cfg.DocumentPath()
	fmt.Printf("Document:    %s %s\n", doc, mark(doc))
	fmt.Printf("Annotations: %s %s\n", document.SidecarPath(doc), mark(document.SidecarPath(doc)))
	fmt.Printf("Autosave:    %s\n\n", setting(cfg.Document.Autosave))

	fmt.Println("Completion:")
	fmt.Printf("  %-10s %s\n", "url", setting(cfg.Completion.URL))

	fmt.Println("Document AI:")
	fmt.Printf("  %-10s %s\n", "model", cfg.DocAI.Model)
	fmt.Printf("  %-10s %s\n", "base", setting(cfg.DocAI.APIBase))
	fmt.Printf("  %-10s %s\n", "key", setting(logging.Mask(cfg.DocAI.APIKey)))

	fmt.Println("Relay:")
	fmt.Printf("  %-10s %s\n", "upstream", cfg.Relay.Upstream)
	fmt.Printf("  %-10s %d\n", "port", cfg.Relay.Port)
	fmt.Printf("  %-10s %s\n", "key", setting(logging.Mask(cfg.Relay.APIKey)))
	return nil
}
