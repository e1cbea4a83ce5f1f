package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/docwright/docwright/internal/actions"
)

var actionsJSON bool

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the document actions the model can call",
	RunE:  runActions,
}

func init() {
	actionsCmd.Flags().BoolVar(&actionsJSON, "json", false, "Print the tool definitions sent to the model")
}

func runActions(_ *cobra.Command, _ []string) error {
	registry := actions.NewRegistry()

	if actionsJSON {
		data, err := json.MarshalIndent(actions.Definitions(actions.BuildSchemas(registry.List())), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal definitions: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tLABEL\tDESCRIPTION")
	for _, a := range registry.List() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", a.Key(), a.Label(), a.Description())
	}
	return w.Flush()
}
