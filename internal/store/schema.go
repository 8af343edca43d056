package store

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

// recordSchema checks raw JSON records against the #Operation definition.
// A cue.Context is not safe for concurrent use, so access is serialized.
type recordSchema struct {
	mu        sync.Mutex
	ctx       *cue.Context
	operation cue.Value
}

var loadSchema = sync.OnceValues(func() (*recordSchema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling record schema: %w", err)
	}
	def := v.LookupPath(cue.ParsePath("#Operation"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("looking up #Operation: %w", err)
	}
	return &recordSchema{ctx: ctx, operation: def}, nil
})

// check returns a readable description of every way raw violates the
// schema, or nil when it conforms.
func (s *recordSchema) check(raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.ctx.CompileBytes(raw, cue.Filename("record.json"))
	if err := v.Err(); err != nil {
		return fmt.Errorf("not a JSON object: %s", firstLine(err))
	}

	unified := s.operation.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s", describe(err))
	}
	return nil
}

func describe(err error) string {
	var msgs []string
	for _, e := range cueerrors.Errors(err) {
		msgs = append(msgs, firstLine(e))
		if len(msgs) == 3 {
			break
		}
	}
	if len(msgs) == 0 {
		return firstLine(err)
	}
	return strings.Join(msgs, "; ")
}

func firstLine(err error) string {
	msg, _, _ := strings.Cut(err.Error(), "\n")
	return msg
}
