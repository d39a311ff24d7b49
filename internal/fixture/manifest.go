package fixture

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest describes a fixture catalog.
type Manifest struct {
	// Name identifies the catalog in reports and run history.
	Name string `yaml:"name" json:"name"`

	// Extension is appended to every fixture identifier (without the dot).
	Extension string `yaml:"extension" json:"extension"`

	// ValidRoot and ErrorRoot are the directories holding each group.
	// They are joined with "/" and never cleaned, so the path handed to the
	// compiler is exactly the one it must echo back in diagnostic locations.
	ValidRoot string `yaml:"valid_root" json:"valid_root"`
	ErrorRoot string `yaml:"error_root" json:"error_root"`

	// Valid lists identifiers of fixtures that must compile cleanly.
	Valid []string `yaml:"valid" json:"valid"`

	// Errors lists fixtures that must fail with exactly one diagnostic.
	Errors []ErrorEntry `yaml:"errors" json:"errors"`
}

// ErrorEntry is one erroring fixture and its expected diagnostic.
type ErrorEntry struct {
	ID string `yaml:"id" json:"id"`

	// Diagnostic is the expected taxonomy code, e.g. "lex-invalid-char".
	Diagnostic string `yaml:"diagnostic" json:"diagnostic"`

	// At is the expected "line:column" suffix of the diagnostic location.
	At string `yaml:"at" json:"at"`

	// Stage overrides the stage inferred from the diagnostic prefix.
	Stage Stage `yaml:"stage,omitempty" json:"stage,omitempty"`

	// Disabled keeps a reserved entry in the manifest without running it.
	Disabled bool `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

var (
	numericID  = regexp.MustCompile(`^[0-9]+$`)
	lineColumn = regexp.MustCompile(`^[1-9][0-9]*:[1-9][0-9]*$`)
)

// Load reads a manifest file. The format is chosen by extension:
// .yaml and .yml are YAML, .cue is CUE.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m *Manifest
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		m, err = ParseYAML(data)
	case ".cue":
		m, err = ParseCUE(path, data)
	default:
		return nil, fmt.Errorf("unsupported manifest extension %q (want .yaml, .yml or .cue)", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return m, nil
}

// ParseYAML decodes a YAML manifest, rejecting unknown fields.
// The result is not validated.
func ParseYAML(data []byte) (*Manifest, error) {
	var m Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if m.Extension == "" {
		m.Extension = defaultExtension
	}
	return &m, nil
}

// Validate checks that the manifest describes a consistent catalog.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.Extension == "" || strings.HasPrefix(m.Extension, ".") {
		return fmt.Errorf("extension must be non-empty and given without a leading dot")
	}
	if len(m.Valid) > 0 && m.ValidRoot == "" {
		return fmt.Errorf("valid_root is required when valid fixtures are listed")
	}
	if len(m.Errors) > 0 && m.ErrorRoot == "" {
		return fmt.Errorf("error_root is required when error fixtures are listed")
	}

	seen := make(map[string]bool, len(m.Valid))
	for i, id := range m.Valid {
		if !numericID.MatchString(id) {
			return fmt.Errorf("valid[%d]: id %q must be numeric", i, id)
		}
		if seen[id] {
			return fmt.Errorf("valid[%d]: duplicate id %q", i, id)
		}
		seen[id] = true
	}

	seen = make(map[string]bool, len(m.Errors))
	for i, e := range m.Errors {
		if e.ID == "" {
			return fmt.Errorf("errors[%d]: id is required", i)
		}
		if seen[e.ID] {
			return fmt.Errorf("errors[%d]: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = true
		if e.Diagnostic == "" {
			return fmt.Errorf("errors[%d]: diagnostic is required", i)
		}
		if !lineColumn.MatchString(e.At) {
			return fmt.Errorf("errors[%d]: at %q must be line:column with 1-based positions", i, e.At)
		}
		switch e.Stage {
		case "", StageLex, StageSyn, StageCFA:
		default:
			return fmt.Errorf("errors[%d]: stage %q must be one of lex, syn, cfa", i, e.Stage)
		}
	}

	return nil
}

// Cases builds the ordered catalog: valid fixtures, then erroring ones,
// each group in ascending numeric identifier order. Disabled entries are
// left out.
func (m *Manifest) Cases() []Case {
	cases := make([]Case, 0, len(m.Valid)+len(m.Errors))

	valid := append([]string(nil), m.Valid...)
	sortIDs(valid, func(i int) string { return valid[i] })
	for _, id := range valid {
		cases = append(cases, Case{
			ID:    id,
			Path:  fixturePath(m.ValidRoot, id, m.Extension),
			Kind:  KindValid,
			Stage: StageOutput,
		})
	}

	errs := make([]ErrorEntry, 0, len(m.Errors))
	for _, e := range m.Errors {
		if !e.Disabled {
			errs = append(errs, e)
		}
	}
	sortIDs(errs, func(i int) string { return errs[i].ID })
	for _, e := range errs {
		path := fixturePath(m.ErrorRoot, e.ID, m.Extension)
		stage := e.Stage
		if stage == "" {
			stage = inferStage(e.Diagnostic)
		}
		cases = append(cases, Case{
			ID:               e.ID,
			Path:             path,
			Kind:             KindErroring,
			Stage:            stage,
			ExpectedID:       e.Diagnostic,
			ExpectedLocation: path + ":" + e.At,
		})
	}

	return cases
}

// Lint reports diagnostic codes that are not in known. It is advisory:
// codes form an open set and unknown ones still run.
func (m *Manifest) Lint(known []string) []string {
	set := make(map[string]bool, len(known))
	for _, k := range known {
		set[k] = true
	}

	var warnings []string
	for i, e := range m.Errors {
		if !set[e.Diagnostic] {
			warnings = append(warnings, fmt.Sprintf("errors[%d]: unknown diagnostic %q", i, e.Diagnostic))
		}
	}
	return warnings
}

func fixturePath(root, id, ext string) string {
	return strings.TrimSuffix(root, "/") + "/" + id + "." + ext
}

// sortIDs orders a slice by numeric value of its identifiers, falling back
// to string order for equal or non-numeric values.
func sortIDs(slice any, id func(i int) string) {
	sort.SliceStable(slice, func(i, j int) bool {
		a, b := id(i), id(j)
		na, errA := strconv.ParseUint(a, 10, 64)
		nb, errB := strconv.ParseUint(b, 10, 64)
		if errA == nil && errB == nil && na != nb {
			return na < nb
		}
		if (errA == nil) != (errB == nil) {
			return errA == nil
		}
		return a < b
	})
}
