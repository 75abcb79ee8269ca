package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/clinctx/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	Verbose    bool
	Format     string // "json" | "text"

	v          *viper.Viper
	configUsed string
	configRead bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = config.Formats

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"rules":   config.KeyRules,
	"attr":    config.KeyAttr,
	"term":    config.KeyTerms,
	"label":   config.KeyLabel,
	"format":  config.KeyFormat,
	"verbose": config.KeyVerbose,
}

// NewRootCommand creates the root command for the clinctx CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "clinctx",
		Short: "clinctx - contextual qualifiers for clinical entities",
		Long: `Assigns contextual qualifiers (presence, temporality, experiencer,
plausibility) to entities in clinical text using trigger phrase rules.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (CLINCTX_*)
3. Config file (~/.clinctx/config.yaml)
4. Defaults`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: $HOME/.clinctx/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewAnnotateCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRulesCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// settings returns the settings store. Format and Verbose set on opts before
// the first call act as defaults, so commands built without the root
// command keep them.
func (o *RootOptions) settings() *viper.Viper {
	if o.v == nil {
		o.v = config.New()
		if o.Format != "" {
			o.v.SetDefault(config.KeyFormat, o.Format)
		}
		o.v.SetDefault(config.KeyVerbose, o.Verbose)
	}
	return o.v
}

// resolve binds the flags of cmd, reads the config file once and returns
// the effective configuration. Format and Verbose are updated from it.
func (o *RootOptions) resolve(cmd *cobra.Command) (config.Config, error) {
	v := o.settings()

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return config.Config{}, bindErr
	}

	if !o.configRead {
		used, err := config.ReadFile(v, o.ConfigFile)
		if err != nil {
			return config.Config{}, err
		}
		o.configUsed = used
		o.configRead = true
	}

	cfg, err := config.Decode(v)
	if err != nil {
		return config.Config{}, err
	}
	o.Format = cfg.Format
	o.Verbose = cfg.Verbose
	return cfg, nil
}

// printer returns a Printer on the streams of cmd. Verbose output goes to
// stderr so json on stdout stays parseable.
func (o *RootOptions) printer(cmd *cobra.Command) *Printer {
	return &Printer{
		Format:  o.Format,
		Out:     cmd.OutOrStdout(),
		Diag:    cmd.ErrOrStderr(),
		Verbose: o.Verbose,
	}
}

// logger returns a text logger on w at Info, or Debug when verbose.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
