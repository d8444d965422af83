package cli

import (
	"fmt"
	"os"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// slowThresholdMs marks a passing step as slow.
const slowThresholdMs = 10000

// colorsEnabled determines if ANSI colors should be used
var colorsEnabled = true

func init() {
	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
		return
	}
	// Check if stdout is a terminal
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			colorsEnabled = false
		}
	}
}

// color returns the color code if colors are enabled, empty string otherwise
func color(c string) string {
	if colorsEnabled {
		return c
	}
	return ""
}

// printStep prints one finished step.
func printStep(idx, total int, sr *core.StepResult) {
	desc := sr.Label
	if sr.Step != nil {
		desc = sr.Step.Describe()
	}
	counter := fmt.Sprintf("%s[%d/%d]%s", color(colorGray), idx+1, total, color(colorReset))
	durMs := sr.Duration.Milliseconds()
	durStr := formatDuration(durMs)

	switch sr.Status {
	case core.StatusPassed:
		durColor := ""
		if durMs >= slowThresholdMs {
			durColor = color(colorYellow)
		}
		fmt.Printf("    %s %s✓%s %s %s(%s)%s\n",
			counter, color(colorGreen), color(colorReset), desc, durColor, durStr, color(colorReset))
	case core.StatusWarned:
		fmt.Printf("    %s %s⚠%s %s (%s)\n", counter, color(colorYellow), color(colorReset), desc, durStr)
		if sr.Warning != "" {
			fmt.Printf("      %s╰─%s %s\n", color(colorGray), color(colorReset), sr.Warning)
		}
	case core.StatusSkipped:
		fmt.Printf("    %s %s-%s %s%s%s\n", counter, color(colorDim), color(colorReset), color(colorDim), desc, color(colorReset))
	default:
		fmt.Printf("    %s %s✗%s %s (%s)\n", counter, color(colorRed), color(colorReset), desc, durStr)
		if sr.Error != "" {
			fmt.Printf("      %s╰─%s %s\n", color(colorGray), color(colorReset), sr.Error)
		}
	}
}

// printSummary prints the run totals and the report location.
func printSummary(result *core.FlowResult, reportPath string) {
	fmt.Println()
	status := color(colorGreen) + "PUBLISHED" + color(colorReset)
	if !result.Success() {
		status = color(colorRed) + "FAILED" + color(colorReset)
	}
	fmt.Printf("  %s%s%s  %s  %s(%s)%s\n", color(colorBold), result.Name, color(colorReset),
		status, color(colorGray), formatDuration(result.Duration.Milliseconds()), color(colorReset))
	fmt.Printf("  %d passed, %d warned, %d failed, %d skipped\n",
		result.PassedSteps, result.WarnedSteps, result.FailedSteps, result.SkippedSteps)
	if result.FailedStep != "" {
		fmt.Printf("  Failed at %s%s%s: %s\n", color(colorRed), result.FailedStep, color(colorReset), result.Error)
	}
	fmt.Printf("  Final state: %s\n", result.FinalState)
	fmt.Printf("  Report: %s\n\n", reportPath)
}

func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	mins := ms / 60000
	secs := (ms % 60000) / 1000
	return fmt.Sprintf("%dm %ds", mins, secs)
}
