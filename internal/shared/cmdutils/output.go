package cmdutils

import (
	"fmt"
	"io"
)

const logo = "📝"

// PrintResponse writes a turn's reply under the docwright banner.
func PrintResponse(w io.Writer, text string) {
	if text == "" {
		return
	}

	fmt.Fprintf(w, "\n%s docwright\n%s\n\n", logo, text)
}
