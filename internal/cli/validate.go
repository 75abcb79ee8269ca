package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/clinctx/internal/rules"
)

// ValidationResult is the report of the validate command.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Classes int               `json:"classes"`
	Rules   int               `json:"rules"`
	Issues  []rules.LintIssue `json:"issues,omitempty"`

	loadErr *rules.LoadError
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var lint bool

	cmd := &cobra.Command{
		Use:   "validate <rules>",
		Short: "Validate a rule document",
		Long: `Validate a JSON, YAML or CUE rule document against the rule schema
and check every qualifier reference, direction, max_scope and pattern.

With --lint, the loaded rule set is also checked for duplicate phrases,
untrimmed phrases, phrases used in two directions of one qualifier and
pseudo phrases that contain no trigger phrase.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], lint, cmd)
		},
	}

	cmd.Flags().BoolVar(&lint, "lint", false, "also report suspicious but loadable rules")

	return cmd
}

func runValidate(opts *RootOptions, path string, lint bool, cmd *cobra.Command) error {
	_, err := opts.resolve(cmd)
	out := opts.printer(cmd)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	rs, err := rules.LoadFile(path)
	if err != nil {
		var le *rules.LoadError
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return out.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("rule document not found: %s", path), nil)
		case errors.As(err, &le):
			// Invalid documents are validation failures.
			return out.Reject(ExitFailure, ValidationResult{loadErr: le},
				Problem{Code: le.Code, Message: le.Message, Details: loadErrorDetails(le)})
		default:
			return out.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
		}
	}
	out.Verbosef("Loaded %d rule(s) in %d qualifier class(es) from %s", len(rs.Rules), len(rs.Classes), path)

	result := ValidationResult{Valid: true, Classes: len(rs.Classes), Rules: len(rs.Rules)}
	if lint {
		result.Issues = rules.Lint(rs)
	}
	if len(result.Issues) > 0 {
		return out.Reject(ExitFailure, result, Problem{Code: ErrCodeLint, Message: lintSummary(result.Issues)})
	}
	return out.Report(result)
}

// WriteText writes a check mark line for valid rules, or the load error or
// lint issues that fail the document.
func (r ValidationResult) WriteText(w io.Writer) error {
	var b strings.Builder
	switch {
	case r.loadErr != nil:
		le := r.loadErr
		b.WriteString("✗ Validation failed\n\n")
		if le.Pos.IsValid() {
			fmt.Fprintf(&b, "%s line %d\n", le.Pos.Filename(), le.Pos.Line())
		}
		if le.Field != "" {
			fmt.Fprintf(&b, "  %s: %s: %s\n", le.Code, le.Field, le.Message)
		} else {
			fmt.Fprintf(&b, "  %s: %s\n", le.Code, le.Message)
		}
	case len(r.Issues) > 0:
		fmt.Fprintf(&b, "✗ Rules loaded with %s\n\n", lintSummary(r.Issues))
		for _, issue := range r.Issues {
			fmt.Fprintf(&b, "  %s\n", issue)
		}
	default:
		fmt.Fprintf(&b, "✓ Rules valid (%d rules, %d qualifier classes)\n", r.Rules, r.Classes)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func lintSummary(issues []rules.LintIssue) string {
	return fmt.Sprintf("%d lint issue(s)", len(issues))
}

func loadErrorDetails(le *rules.LoadError) map[string]any {
	details := map[string]any{}
	if le.Field != "" {
		details["field"] = le.Field
	}
	if le.Pos.IsValid() {
		details["file"] = le.Pos.Filename()
		details["line"] = le.Pos.Line()
		details["column"] = le.Pos.Column()
	}
	if len(details) == 0 {
		return nil
	}
	return details
}
