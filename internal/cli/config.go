package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/clinctx/internal/config"
)

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage clinctx configuration",
	}
	cmd.AddCommand(newConfigShowCommand(rootOpts))
	return cmd
}

func newConfigShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Display the configuration resolved from defaults, the config file,
CLINCTX_* environment variables and flags.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.resolve(cmd)
			out := rootOpts.printer(cmd)
			if err != nil {
				return out.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
			}

			if !out.JSON() {
				if rootOpts.configUsed != "" {
					fmt.Fprintf(out.diag(), "Configuration file: %s\n", rootOpts.configUsed)
				} else {
					fmt.Fprintln(out.diag(), "No configuration file found (using defaults)")
				}
			}
			return out.Report(configReport(cfg))
		},
	}
}

// configReport is the effective configuration, written as YAML in text
// format.
type configReport config.Config

func (r configReport) WriteText(w io.Writer) error {
	data, err := yaml.Marshal(config.Config(r))
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	_, err = w.Write(data)
	return err
}
