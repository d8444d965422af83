package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/reel-publisher/pkg/flow"
)

// BuilderConfig contains configuration for building the report skeleton.
type BuilderConfig struct {
	RunnerVersion string
	DriverName    string // playwright, mock
}

// BuildSkeleton creates the initial report for f with every command pending.
func BuildSkeleton(f *flow.Flow, cfg BuilderConfig) *Report {
	now := time.Now()
	commands := buildCommands(f.Steps)

	return &Report{
		Version:     Version,
		RunID:       uuid.NewString(),
		Name:        f.Name,
		Status:      StatusPending,
		StartTime:   now,
		LastUpdated: now,
		Runner: RunnerInfo{
			Version: cfg.RunnerVersion,
			Driver:  cfg.DriverName,
		},
		Summary: Summary{
			Total:   len(commands),
			Pending: len(commands),
		},
		Commands: commands,
	}
}

// buildCommands creates Command entries from flow steps.
func buildCommands(steps []flow.Step) []Command {
	commands := make([]Command, len(steps))
	for i, step := range steps {
		commands[i] = Command{
			ID:       fmt.Sprintf("cmd-%03d", i),
			Index:    i,
			Type:     string(step.Type()),
			Label:    step.Label(),
			Describe: step.Describe(),
			Status:   StatusPending,
			Params:   extractParams(step),
		}
	}
	return commands
}

// extractParams extracts command parameters from a step.
func extractParams(step flow.Step) *CommandParams {
	params := &CommandParams{}

	var sel flow.Selector
	switch s := step.(type) {
	case *flow.OpenComposerStep:
		sel, params.Timeout = s.Button, s.TimeoutMs
	case *flow.UploadMediaStep:
		sel, params.Timeout = s.Input, s.TimeoutMs
	case *flow.InputTextStep:
		sel, params.Timeout = s.Target, s.TimeoutMs
		params.Text = s.Text
	case *flow.ClickStep:
		sel, params.Timeout = s.Target, s.TimeoutMs
	case *flow.FinishStep:
		sel, params.Timeout = s.Marker, s.ConfirmTimeoutMs
	}

	if !sel.IsEmpty() {
		params.Selector = sel.Describe()
		for _, c := range sel.Candidates {
			params.Locators = append(params.Locators, c.Query())
		}
	}

	if params.Selector == "" && params.Text == "" && params.Timeout == 0 {
		return nil
	}
	return params
}
