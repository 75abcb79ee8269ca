package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/clinctx/internal/rules"
)

// ClassSummary describes one qualifier class of a rule set.
type ClassSummary struct {
	Name    string   `json:"name"`
	Values  []string `json:"values"`
	Default string   `json:"default"`
	Rules   int      `json:"rules"`
}

// RulesSummary is the JSON payload of the rules command.
type RulesSummary struct {
	Source  string         `json:"source"`
	Classes []ClassSummary `json:"classes"`
	Rules   int            `json:"rules"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules [rules]",
		Short: "List the qualifier classes of a rule set",
		Long: `List the qualifier classes of a rule document with their values,
default value and number of rules. Without an argument the configured rule
document is listed, or the embedded rules when none is configured.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runRules(opts *RootOptions, args []string, cmd *cobra.Command) error {
	cfg, err := opts.resolve(cmd)
	out := opts.printer(cmd)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	path := cfg.Rules
	if len(args) == 1 {
		path = args[0]
	}

	rs, err := loadRuleSet(path)
	if err != nil {
		return ruleLoadFailure(out, err)
	}

	return out.Report(summarize(path, rs))
}

// WriteText writes the source and rule count followed by one line per
// class.
func (s RulesSummary) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s: %d rules\n\n", s.Source, s.Rules); err != nil {
		return err
	}
	for _, c := range s.Classes {
		if _, err := fmt.Fprintf(w, "%-14s %3d rules  default %-10s values %s\n",
			c.Name, c.Rules, c.Default, strings.Join(c.Values, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func summarize(path string, rs *rules.RuleSet) RulesSummary {
	if path == "" {
		path = "(embedded)"
	}
	counts := rs.Counts()

	summary := RulesSummary{Source: path, Rules: len(rs.Rules)}
	for _, c := range rs.Classes {
		summary.Classes = append(summary.Classes, ClassSummary{
			Name:    c.Name(),
			Values:  c.Values(),
			Default: c.DefaultValue(),
			Rules:   counts[c.Name()],
		})
	}
	return summary
}
