package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docwright/docwright/internal/config"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize configuration and a starter document",
	RunE:  runOnboard,
}

const starterDocument = `# Welcome to docwright

This is your working document. Ask docwright to highlight the key ideas,
suggest edits as tracked changes, leave comments, or summarize it.

Try: docwright prompt -m "Highlight every mention of docwright"
`

func runOnboard(_ *cobra.Command, _ []string) error {
	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config already exists at %s\n", cfgPath)
		fmt.Printf("Press Enter to refresh (keep existing values) or Ctrl+C to cancel: ")
		fmt.Scanln()
		existing, loadErr := config.Load(cfgPath)
		if loadErr != nil {
			starter := config.StarterConfig()
			existing = &starter
		}
		if err := config.Save(existing, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
	} else {
		cfg := config.StarterConfig()
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	docPath := cfg.DocumentPath()
	if err := os.MkdirAll(filepath.Dir(docPath), 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	if _, err := os.Stat(docPath); os.IsNotExist(err) {
		if err := os.WriteFile(docPath, []byte(starterDocument), 0o644); err != nil {
			return fmt.Errorf("write starter document: %w", err)
		}
		fmt.Printf("  Created %s\n", docPath)
	}

	fmt.Printf("\n%s docwright is ready!\n\n", logo)
	fmt.Println("Next steps:")
	fmt.Println("  1. Put OPENAI_API_KEY in your environment or a .env file")
	fmt.Println("  2. Start the relay:   docwright relay")
	fmt.Println("  3. Edit a document:   docwright prompt -m \"Summarize this document\"")
	return nil
}
