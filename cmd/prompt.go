package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/docwright/docwright/internal/activity"
	"github.com/docwright/docwright/internal/dependency"
	"github.com/docwright/docwright/internal/orchestrator"
	"github.com/docwright/docwright/internal/shared/cmdutils"
)

var (
	promptMessage  string
	promptDocument string
	promptShowLog  bool
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Run prompts against a document",
	RunE:  runPrompt,
}

func init() {
	promptCmd.Flags().StringVarP(&promptMessage, "message", "m", "", "Run a single prompt and exit")
	promptCmd.Flags().StringVarP(&promptDocument, "document", "d", "", "Document file (default from config)")
	promptCmd.Flags().BoolVar(&promptShowLog, "log", true, "Print the session log after each turn")
}

var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

func runPrompt(_ *cobra.Command, _ []string) error {
	cfg := appCfg
	if promptDocument != "" {
		cfg.Document.Path = promptDocument
	}

	container, err := dependency.New(cfg)
	if err != nil {
		return err
	}
	orch := container.Orchestrator()
	log := container.Log()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer func() {
		if !container.Document().Dirty() {
			return
		}
		if err := container.Document().Save(); err != nil {
			fmt.Fprintf(os.Stderr, "save document: %v\n", err)
			return
		}
		fmt.Printf("✓ Saved %s\n", container.Document().Path())
	}()

	if promptMessage != "" {
		return runSinglePrompt(ctx, orch, log, promptMessage)
	}
	return runInteractive(ctx, orch, log)
}

// runSinglePrompt runs one turn, prints the outcome and returns the turn's
// error, if any.
func runSinglePrompt(ctx context.Context, orch *orchestrator.Orchestrator, log *activity.Log, prompt string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	fmt.Fprintf(os.Stderr, "  ↳ thinking...\n")
	before := log.Len()
	out, err := orch.RunTurn(ctx, prompt)
	if err != nil {
		cmdutils.PrintResponse(os.Stdout, "Error: "+err.Error())
	} else {
		cmdutils.PrintResponse(os.Stdout, out)
	}
	if promptShowLog {
		printLog(log.Records()[before:])
	}
	return err
}

// runInteractive reads prompts from stdin until EOF or an exit command.
func runInteractive(ctx context.Context, orch *orchestrator.Orchestrator, log *activity.Log) error {
	fmt.Printf("%s Interactive mode (type 'exit' or Ctrl+C to quit)\n\n", logo)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("You: ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Println("\nGoodbye!")
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Println("\nGoodbye!")
				return nil
			}
			line = strings.TrimSpace(l)
		}

		if line == "" {
			continue
		}
		if exitCommands[strings.ToLower(line)] {
			fmt.Println("Goodbye!")
			return nil
		}
		// Failures are already printed and logged; the session continues.
		_ = runSinglePrompt(ctx, orch, log, line)
	}
}

func printLog(records []activity.Record) {
	for _, r := range records {
		fmt.Printf("  #%-3d %-24s %s\n", r.ID, r.Action, r.Status)
		if r.Error != nil {
			fmt.Printf("       error: %s\n", *r.Error)
		}
	}
}
