package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/clinctx/internal/detector"
	"github.com/roach88/clinctx/internal/document"
	"github.com/roach88/clinctx/internal/match"
	"github.com/roach88/clinctx/internal/qualifier"
	"github.com/roach88/clinctx/internal/rules"
)

// ContextAlgorithm assigns qualifiers to entities from trigger phrases found
// in the same sentence.
//
// Thread-safety model:
//   - AddRule, AddRules, AddQualifierClass: not safe for concurrent use
//   - DetectQualifiers, Annotate: safe for concurrent use on different
//     documents once construction is finished
//
// INVARIANTS:
//   - rules slice order NEVER changes; rule i is registered as "rule_i"
//   - every rule key lives in exactly one matcher, chosen by pattern kind
//   - qualifier classes are unique by name
type ContextAlgorithm struct {
	phrases *match.PhraseMatcher
	tokens  *match.TokenMatcher

	rules   []rules.ContextRule
	byKey   map[string]int
	classes []*qualifier.Class

	logger *slog.Logger
}

// Option configures a ContextAlgorithm.
type Option func(*config)

type config struct {
	phraseAttr match.Attr
	logger     *slog.Logger
}

// WithPhraseAttr sets the token attribute phrase patterns are compared on.
//
// Default: match.AttrNorm
func WithPhraseAttr(attr match.Attr) Option {
	return func(c *config) {
		c.phraseAttr = attr
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// New creates an engine without rules or qualifier classes.
func New(opts ...Option) *ContextAlgorithm {
	cfg := config{
		phraseAttr: match.AttrNorm,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &ContextAlgorithm{
		phrases: match.NewPhraseMatcher(cfg.phraseAttr),
		tokens:  match.NewTokenMatcher(),
		byKey:   make(map[string]int),
		logger:  cfg.logger,
	}
}

// NewFromRuleSet creates an engine holding the classes and rules of rs.
func NewFromRuleSet(rs *rules.RuleSet, opts ...Option) (*ContextAlgorithm, error) {
	a := New(opts...)

	for _, c := range rs.Classes {
		if err := a.AddQualifierClass(c); err != nil {
			return nil, err
		}
	}
	if err := a.AddRules(rs.Rules); err != nil {
		return nil, err
	}

	a.logger.Info("context rules loaded",
		"classes", len(a.classes),
		"rules", len(a.rules),
		"phrase_rules", a.phrases.Len(),
		"token_rules", a.tokens.Len(),
	)
	return a, nil
}

// AddQualifierClass registers c, so that entities are initialized with its
// default value.
func (a *ContextAlgorithm) AddQualifierClass(c *qualifier.Class) error {
	for _, existing := range a.classes {
		if existing.Name() == c.Name() {
			return fmt.Errorf("%w: %s", rules.ErrDuplicateClass, c.Name())
		}
	}
	a.classes = append(a.classes, c)
	return nil
}

// AddRule registers r under the next rule key.
func (a *ContextAlgorithm) AddRule(r rules.ContextRule) error {
	if err := r.Pattern.Validate(); err != nil {
		return err
	}
	if r.MaxScope < 0 {
		return fmt.Errorf("%w, got %d", rules.ErrInvalidMaxScope, r.MaxScope)
	}

	key := ruleKey(len(a.rules))

	var err error
	if r.Pattern.IsPhrase() {
		err = a.phrases.Add(key, r.Pattern.Phrase)
	} else {
		err = a.tokens.Add(key, r.Pattern.Tokens)
	}
	if err != nil {
		return fmt.Errorf("add rule %s (%s): %w", key, r, err)
	}

	a.byKey[key] = len(a.rules)
	a.rules = append(a.rules, r)
	return nil
}

// AddRules registers rs in order, stopping at the first failure.
func (a *ContextAlgorithm) AddRules(rs []rules.ContextRule) error {
	for _, r := range rs {
		if err := a.AddRule(r); err != nil {
			return err
		}
	}
	return nil
}

func ruleKey(i int) string {
	return fmt.Sprintf("rule_%d", i)
}

// Rule returns the rule registered under key.
func (a *ContextAlgorithm) Rule(key string) (rules.ContextRule, bool) {
	i, ok := a.byKey[key]
	if !ok {
		return rules.ContextRule{}, false
	}
	return a.rules[i], true
}

// Rules returns the registered rules in registration order.
func (a *ContextAlgorithm) Rules() []rules.ContextRule {
	out := make([]rules.ContextRule, len(a.rules))
	copy(out, a.rules)
	return out
}

// Len returns the number of registered rules.
func (a *ContextAlgorithm) Len() int { return len(a.rules) }

// QualifierClasses returns the registered classes in registration order.
func (a *ContextAlgorithm) QualifierClasses() []*qualifier.Class {
	out := make([]*qualifier.Class, len(a.classes))
	copy(out, a.classes)
	return out
}

// Annotate initializes the entities of doc and detects their qualifiers.
func (a *ContextAlgorithm) Annotate(doc *document.Document) error {
	return detector.Run(a, doc)
}

// DetectQualifiers assigns qualifiers to the initialized entities of doc,
// one sentence at a time.
func (a *ContextAlgorithm) DetectQualifiers(doc *document.Document) error {
	if len(a.rules) == 0 {
		return newNoRulesError(doc.ID)
	}

	for _, se := range doc.SentencesWithEntities() {
		matched, err := a.matchSentence(doc, se.Sentence)
		if err != nil {
			return a.withDocument(err, doc.ID)
		}

		scopes, err := computeScopes(matched)
		if err != nil {
			return a.withDocument(err, doc.ID)
		}

		a.logger.Debug("sentence scopes computed",
			"doc", doc.ID,
			"sentence", se.Index,
			"matches", len(matched),
			"scopes", scopes.Len(),
			"entities", len(se.Entities),
		)

		for _, ent := range se.Entities {
			winners, err := resolveConflicts(ent, applicable(ent, scopes))
			if err != nil {
				return a.withDocument(err, doc.ID)
			}
			for _, mp := range winners {
				if err := detector.AddQualifier(ent, mp.rule.Qualifier); err != nil {
					return err
				}
				a.logger.Debug("qualifier assigned",
					"doc", doc.ID,
					"entity", doc.EntityText(ent),
					"qualifier", mp.rule.Qualifier.String(),
					"rule", mp.key,
				)
			}
		}
	}
	return nil
}

func (a *ContextAlgorithm) withDocument(err error, docID string) error {
	var re *RuntimeError
	if errors.As(err, &re) && re.DocumentID == "" {
		re.DocumentID = docID
	}
	return err
}

// matchSentence runs both matchers over sentence and returns the matched
// patterns with document-absolute offsets and initialized scopes, ordered
// by trigger start, end and rule order.
func (a *ContextAlgorithm) matchSentence(doc *document.Document, sentence document.Sentence) ([]*matchedPattern, error) {
	var matched []*matchedPattern

	for _, m := range []match.Matcher{a.tokens, a.phrases} {
		if m.Len() == 0 {
			continue
		}

		offset := 0
		if m.Offsets() == match.OffsetRelative {
			offset = sentence.Start
		}

		for _, raw := range m.Match(doc, sentence.Start, sentence.End) {
			idx := a.byKey[raw.Key]
			mp := &matchedPattern{
				key:   raw.Key,
				order: idx,
				rule:  a.rules[idx],
				start: raw.Start + offset,
				end:   raw.End + offset,
			}
			if err := mp.initializeScope(sentence); err != nil {
				return nil, err
			}
			matched = append(matched, mp)
		}
	}

	sortByTrigger(matched)
	return matched, nil
}
