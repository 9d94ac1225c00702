// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/huangsam/attrib/internal/contract"
	"golang.org/x/term"
)

// Fallback and bound values for table identifier widths.
const (
	defaultMaxIDWidth = 32
	minIDWidth        = 12
	tableOverhead     = 48
)

// getMaxTableIDWidth calculates the maximum width for identifier columns in
// table output based on terminal width and table configuration.
func getMaxTableIDWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			return defaultMaxIDWidth
		}
		termWidth = detectedWidth
	}

	width := (termWidth - tableOverhead) / 3
	if width < minIDWidth {
		return minIDWidth
	}
	return width
}
