package contract

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/huangsam/attrib/schema"
)

// Policy label constants.
const (
	WebValue       = "Web"        // Web policy label
	FullStackValue = "Full Stack" // Full Stack policy label
)

// Color variables for console output.
var (
	WebColor       = color.New(color.FgCyan, color.Bold)  // web is the enrichment-driven path
	FullStackColor = color.New(color.FgGreen, color.Bold) // fullstack is the decision-driven path
	HoldbackColor  = color.New(color.FgYellow)            // holdback rows are excluded from counting
)

// GetPlainPolicyLabel returns the plain text label for an attribution policy.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainPolicyLabel(policy schema.AttributionPolicy) string {
	if policy == schema.FullStackPolicy {
		return FullStackValue
	}
	return WebValue
}

// GetColorPolicyLabel returns a colored policy label for console output.
// It uses GetPlainPolicyLabel to determine the string, and then applies the
// appropriate color.
func GetColorPolicyLabel(policy schema.AttributionPolicy) string {
	text := GetPlainPolicyLabel(policy)
	if policy == schema.FullStackPolicy {
		return FullStackColor.Sprint(text)
	}
	return WebColor.Sprint(text)
}

// SubjectFieldCaveat returns a warning for subject key choices that weaken
// conversion reporting, or an empty string when the choice is sound. Events
// carry only a visitor id, so session-keyed decisions cannot join against
// them: Full Stack conversions come up empty and Web visitor counts mix
// session and visitor key spaces.
func SubjectFieldCaveat(subjectIDField string) string {
	if subjectIDField == schema.SessionIDField {
		return "conversion events are keyed by visitor_id; with --subject-id-field session_id, Full Stack conversions cannot join and will be empty"
	}
	return ""
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It writes to stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// TruncateID shortens long identifiers for table rendering, keeping the
// trailing characters which carry the discriminating suffix.
func TruncateID(id string, maxWidth int) string {
	if maxWidth <= 3 || len(id) <= maxWidth {
		return id
	}
	return "..." + id[len(id)-(maxWidth-3):]
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning %s: %v\n", msg, err)
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "Warning %s\n", msg)
}
