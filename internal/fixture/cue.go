package fixture

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// manifestSchema is unified with every CUE manifest. Definitions are
// closed, so misspelled fields fail the same way KnownFields does for YAML.
const manifestSchema = `
#Manifest: {
	name:       string & != ""
	extension:  *"lang" | string
	valid_root: *"" | string
	error_root: *"" | string
	valid:      *[] | [...=~"^[0-9]+$"]
	errors:     *[] | [...#ErrorEntry]
}

#ErrorEntry: {
	id:         string & != ""
	diagnostic: string & != ""
	at:         =~"^[1-9][0-9]*:[1-9][0-9]*$"
	stage?:     "lex" | "syn" | "cfa"
	disabled?:  bool
}
`

// ParseCUE evaluates a CUE manifest against the manifest schema.
// The result is not validated beyond what the schema enforces.
func ParseCUE(filename string, data []byte) (*Manifest, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(manifestSchema, cue.Filename("manifest_schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile manifest schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %s", errors.Details(err, nil))
	}

	unified := schema.LookupPath(cue.ParsePath("#Manifest")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("manifest does not match schema: %s", errors.Details(err, nil))
	}

	var m Manifest
	if err := unified.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode CUE manifest: %w", err)
	}
	return &m, nil
}
