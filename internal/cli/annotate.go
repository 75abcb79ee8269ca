package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/clinctx/internal/config"
	"github.com/roach88/clinctx/internal/document"
	"github.com/roach88/clinctx/internal/engine"
	"github.com/roach88/clinctx/internal/match"
	"github.com/roach88/clinctx/internal/qualifier"
	"github.com/roach88/clinctx/internal/rules"
)

// stdinSource names documents read from standard input.
const stdinSource = "-"

// AnnotateOptions holds annotate command flags.
type AnnotateOptions struct {
	Rules string
	Terms []string
	Label string
	Attr  string

	// IDs generates document IDs.
	IDs document.IDGenerator
}

// AnnotateResult is the JSON payload of the annotate command.
type AnnotateResult struct {
	Documents []DocumentResult `json:"documents"`
}

// DocumentResult holds the annotated entities of one input.
type DocumentResult struct {
	ID       string         `json:"id"`
	Source   string         `json:"source"`
	Entities []EntityResult `json:"entities"`
}

// EntityResult is one entity with its qualifiers.
type EntityResult struct {
	Text       string           `json:"text"`
	Label      string           `json:"label"`
	Start      int              `json:"start"`
	End        int              `json:"end"`
	Sentence   int              `json:"sentence"`
	Qualifiers []qualifier.Dict `json:"qualifiers"`
}

// NewAnnotateCommand creates the annotate command.
func NewAnnotateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnnotateOptions{IDs: document.UUIDv7Generator{}}

	cmd := &cobra.Command{
		Use:   "annotate [files...]",
		Short: "Annotate entities in clinical text with contextual qualifiers",
		Long: `Annotate reads each file (standard input when none are given),
marks every occurrence of the configured terms as an entity and prints the
qualifiers the context rules assign to it.

Terms are compared on the --attr token attribute, like phrase rules.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(rootOpts, opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Rules, "rules", "", "rule document (.json, .yaml, .cue); embedded rules when empty")
	cmd.Flags().StringSliceVarP(&opts.Terms, "term", "t", nil, "entity term (repeatable)")
	cmd.Flags().StringVar(&opts.Label, "label", "entity", "label given to entities")
	cmd.Flags().StringVar(&opts.Attr, "attr", string(match.AttrNorm), "token attribute to match on (TEXT|LOWER|NORM)")

	return cmd
}

func runAnnotate(rootOpts *RootOptions, opts *AnnotateOptions, files []string, cmd *cobra.Command) error {
	cfg, err := rootOpts.resolve(cmd)
	out := rootOpts.printer(cmd)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	logger := rootOpts.logger(cmd.ErrOrStderr())

	if len(cfg.Terms) == 0 {
		return out.Fail(ExitCommandError, ErrCodeNoTerms, "no entity terms: use --term or set terms in the config file", nil)
	}

	rs, err := loadRuleSet(cfg.Rules)
	if err != nil {
		return ruleLoadFailure(out, err)
	}
	out.Verbosef("Loaded %d rule(s) in %d qualifier class(es)", len(rs.Rules), len(rs.Classes))

	algo, err := engine.NewFromRuleSet(rs,
		engine.WithPhraseAttr(cfg.PhraseAttr()),
		engine.WithLogger(logger),
	)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	terms, err := newTermMatcher(cfg)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	sources := files
	if len(sources) == 0 {
		sources = []string{stdinSource}
	}

	result := AnnotateResult{Documents: make([]DocumentResult, 0, len(sources))}
	for _, src := range sources {
		text, err := readSource(src, cmd.InOrStdin())
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return out.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("input not found: %s", src), nil)
			}
			return out.Fail(ExitCommandError, ErrCodeRead, err.Error(), nil)
		}

		doc := document.New(text, document.WithIDGenerator(opts.IDs))
		_, skipped := match.AddEntities(doc, terms, cfg.Label)
		for _, m := range skipped {
			logger.Debug("term match skipped",
				"document_id", doc.ID,
				"start", m.Start,
				"end", m.End,
			)
		}

		if err := algo.Annotate(doc); err != nil {
			return out.Fail(ExitCommandError, ErrCodeAnnotate, err.Error(), map[string]string{"source": src})
		}
		result.Documents = append(result.Documents, documentResult(src, doc))
	}

	return out.Report(result)
}

func loadRuleSet(path string) (*rules.RuleSet, error) {
	if path == "" {
		return rules.Default()
	}
	return rules.LoadFile(path)
}

// ruleLoadFailure reports a rule document error under its loader code.
func ruleLoadFailure(out *Printer, err error) error {
	var le *rules.LoadError
	if errors.As(err, &le) {
		var details map[string]any
		if le.Pos.IsValid() {
			details = map[string]any{"file": le.Pos.Filename(), "line": le.Pos.Line(), "column": le.Pos.Column()}
		}
		return out.Fail(ExitCommandError, le.Code, le.Error(), details)
	}
	return out.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}

func readSource(src string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if src == stdinSource {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// newTermMatcher returns a phrase matcher over the configured terms.
func newTermMatcher(cfg config.Config) (*match.PhraseMatcher, error) {
	m := match.NewPhraseMatcher(cfg.PhraseAttr())
	for i, term := range cfg.Terms {
		if err := m.Add(fmt.Sprintf("term_%d", i), term); err != nil {
			return nil, fmt.Errorf("term %q: %w", term, err)
		}
	}
	return m, nil
}

func documentResult(src string, doc *document.Document) DocumentResult {
	res := DocumentResult{
		ID:       doc.ID,
		Source:   src,
		Entities: make([]EntityResult, 0, len(doc.Entities)),
	}
	for _, ent := range doc.Entities {
		res.Entities = append(res.Entities, EntityResult{
			Text:       doc.EntityText(ent),
			Label:      ent.Label,
			Start:      ent.Start,
			End:        ent.End,
			Sentence:   ent.Sentence,
			Qualifiers: ent.QualifierDicts(),
		})
	}
	return res
}

// WriteText writes one line per entity: source, text, token span and the
// qualifiers in class order.
func (r AnnotateResult) WriteText(w io.Writer) error {
	for _, doc := range r.Documents {
		for _, ent := range doc.Entities {
			if _, err := fmt.Fprintf(w, "%s\t%s\t[%d,%d)\t%s\n",
				doc.Source, ent.Text, ent.Start, ent.End, qualifierNames(ent.Qualifiers)); err != nil {
				return err
			}
		}
	}
	return nil
}

func qualifierNames(qs []qualifier.Dict) string {
	names := make([]string, len(qs))
	for i, q := range qs {
		names[i] = q.Name + "." + q.Value
	}
	return strings.Join(names, " ")
}
