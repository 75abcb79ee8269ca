package rules

import (
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// Schema is the structural schema every rule document must satisfy,
// whatever its encoding. Semantic checks (directions, qualifier
// references, max_scope bounds) happen after decoding.
const Schema = `
#Qualifier: {
	name: string & !=""
	values: [string, ...string]
	default?: string
	priorities?: {[string]: int}
}

#TokenSpec: {[string]: _}

#Pattern: (string & !="") | [#TokenSpec, ...#TokenSpec]

#Rule: {
	qualifier: string
	direction: string
	patterns: [#Pattern, ...#Pattern]
	max_scope?: int | null
}

#RuleDocument: {
	qualifiers: [...#Qualifier]
	rules: [...#Rule]
}
`

// schemaContext holds the compiled schema. cue.Context is not safe for
// concurrent use, so callers serialize on mu.
type schemaContext struct {
	mu  sync.Mutex
	ctx *cue.Context
	doc cue.Value
}

var (
	schemaOnce sync.Once
	schema     *schemaContext
)

func loadSchema() *schemaContext {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(Schema, cue.Filename("rules.schema.cue"))
		if err := v.Err(); err != nil {
			panic("rules: invalid embedded schema: " + err.Error())
		}
		schema = &schemaContext{
			ctx: ctx,
			doc: v.LookupPath(cue.ParsePath("#RuleDocument")),
		}
	})
	return schema
}

// validate unifies data with #RuleDocument and decodes the result.
func (s *schemaContext) validate(data cue.Value, out *ruleDocument) error {
	if err := data.Err(); err != nil {
		return formatCUEError(CodeRead, err)
	}

	unified := s.doc.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(CodeSchema, err)
	}
	if err := unified.Decode(out); err != nil {
		return formatCUEError(CodeSchema, err)
	}
	return nil
}

// formatCUEError turns the first CUE error into a LoadError with position
// and path information.
func formatCUEError(code string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error(), Err: wrapSchema(code, err)}
	}

	first := errs[0]
	format, args := first.Msg()
	le := &LoadError{
		Code:    code,
		Field:   strings.Join(first.Path(), "."),
		Message: fmt.Sprintf(format, args...),
		Err:     wrapSchema(code, first),
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}

func wrapSchema(code string, err error) error {
	if code == CodeSchema {
		return &schemaError{err: err}
	}
	return err
}

// schemaError marks a CUE failure as ErrSchema while keeping the cause.
type schemaError struct{ err error }

func (e *schemaError) Error() string { return e.err.Error() }

func (e *schemaError) Is(target error) bool { return target == ErrSchema }

func (e *schemaError) Unwrap() error { return e.err }
