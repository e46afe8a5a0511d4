package catalog

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// validateSchema unifies the cards with the embedded CUE schema.
// Only the first schema violation is reported.
func validateSchema(cards []Card) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}

	data := ctx.Encode(map[string]any{"cards": cards})
	if err := data.Err(); err != nil {
		return &ValidationError{Index: -1, Message: fmt.Sprintf("encode catalog: %v", err)}
	}

	unified := schema.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return schemaError(err)
	}

	return nil
}

// schemaError converts a CUE error into a ValidationError.
// CUE paths look like ["cards", "3", "term"].
func schemaError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ValidationError{Index: -1, Message: err.Error()}
	}

	first := errs[0]
	path := first.Path()
	verr := &ValidationError{Index: -1, Message: schemaMessage(first)}

	if len(path) >= 2 && path[0] == "cards" {
		if i, convErr := strconv.Atoi(path[1]); convErr == nil {
			verr.Index = i
		}
	}
	if len(path) >= 3 {
		verr.Field = strings.Join(path[2:], ".")
	}

	return verr
}

func schemaMessage(e cueerrors.Error) string {
	format, args := e.Msg()
	return fmt.Sprintf(format, args...)
}
