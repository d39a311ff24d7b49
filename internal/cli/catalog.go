package cli

import (
	"fmt"

	"github.com/roach88/langcheck/internal/fixture"
)

// loadCatalog resolves the manifest (the built-in reference catalog when
// path is empty) and applies the pipeline selector.
func loadCatalog(path, pipeline string) (*fixture.Manifest, []fixture.Case, error) {
	stage, err := fixture.ParseStage(pipeline)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "invalid --pipeline", err)
	}

	m := fixture.Reference()
	if path != "" {
		m, err = fixture.Load(path)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, fmt.Sprintf("cannot load manifest %s", path), err)
		}
	}

	return m, fixture.Filter(m.Cases(), stage), nil
}
