package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ruleboard/internal/level"
	"github.com/roach88/ruleboard/internal/rules"
)

// LevelReport describes one validated level file.
type LevelReport struct {
	Path    string   `json:"path"`
	Valid   bool     `json:"valid"`
	ID      string   `json:"id,omitempty"`
	Width   int      `json:"width,omitempty"`
	Height  int      `json:"height,omitempty"`
	Objects int      `json:"objects,omitempty"`
	Rules   []string `json:"rules,omitempty"`
	Code    string   `json:"code,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// ValidateResult holds the validation output.
type ValidateResult struct {
	Levels  []LevelReport `json:"levels"`
	Valid   int           `json:"valid"`
	Invalid int           `json:"invalid"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <level>...",
		Short: "Check level files",
		Long: `Load and build each level file and report its size, object count and the
rules active at the start.

Level files are YAML, JSON or CUE. CUE files are checked against the level
schema before decoding.

Exit codes:
  0 - All levels valid
  1 - One or more levels invalid
  2 - Command error

Examples:
  ruleboard validate levels/corridor.yaml
  ruleboard validate levels/*.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	result := ValidateResult{Levels: make([]LevelReport, 0, len(paths))}

	for _, path := range paths {
		report := validateLevel(path)
		result.Levels = append(result.Levels, report)
		if report.Valid {
			result.Valid++
		} else {
			result.Invalid++
		}
	}

	if out.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if result.Invalid > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    CodeInvalidLevel,
				Message: fmt.Sprintf("%d level(s) invalid", result.Invalid),
			}
		}
		if err := out.Encode(resp); err != nil {
			return err
		}
	} else {
		w := out.Writer
		for _, r := range result.Levels {
			if !r.Valid {
				fmt.Fprintf(w, "✗ %s\n  [%s] %s\n", r.Path, r.Code, r.Error)
				continue
			}
			fmt.Fprintf(w, "✓ %s: %s %dx%d, %d objects, %d rules\n",
				r.Path, r.ID, r.Width, r.Height, r.Objects, len(r.Rules))
			for _, rule := range r.Rules {
				out.VerboseLog("    %s", rule)
			}
		}
	}

	if result.Invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d level(s) invalid", result.Invalid))
	}
	return nil
}

func validateLevel(path string) LevelReport {
	report := LevelReport{Path: path}

	def, err := level.LoadFile(path)
	if err == nil {
		var active []string
		board, seed, buildErr := level.Build(def)
		if buildErr == nil {
			for _, r := range rules.Merge(rules.Derive(board), seed) {
				active = append(active, r.String())
			}
			report.Valid = true
			report.ID = def.ID
			report.Width = board.Width()
			report.Height = board.Height()
			report.Objects = board.Len()
			report.Rules = active
			return report
		}
		err = buildErr
	}

	report.Code = string(level.CodeOf(err))
	if report.Code == "" {
		report.Code = CodeInvalidLevel
	}
	report.Error = err.Error()
	return report
}
