package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/sentinelhq/sentinel/schema"
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // standard danger
	HighColor     = color.New(color.FgMagenta, color.Bold) // strong, distinct warning
	ModerateColor = color.New(color.FgYellow)              // caution, not bold
	LowColor      = color.New(color.FgCyan)                // informational
)

// LevelColor returns the console color for a risk level.
// Unrecognized levels get no color.
func LevelColor(level schema.RiskLevel) *color.Color {
	switch level {
	case schema.CriticalRisk:
		return CriticalColor
	case schema.HighRisk:
		return HighColor
	case schema.ModerateRisk:
		return ModerateColor
	case schema.LowRisk:
		return LowColor
	}
	return nil
}

// GetColorLabel returns the level name, colored for table output when useColors is set.
func GetColorLabel(level schema.RiskLevel, useColors bool) string {
	text := string(level)
	c := LevelColor(level)
	if !useColors || c == nil {
		return text
	}
	return c.Sprint(text)
}

// GetScoreLabel returns a colored label for a raw risk score using the display thresholds.
func GetScoreLabel(score int, useColors bool) string {
	return GetColorLabel(schema.LevelForScore(score), useColors)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for run history.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".sentinel_analysis.db"
	}
	return filepath.Join(homeDir, ".sentinel_analysis.db")
}

// TruncateText shortens s to maxWidth runes with an ellipsis suffix.
// Requires maxWidth > 3 so at least one character of content survives.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
