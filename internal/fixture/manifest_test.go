package fixture

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReferenceCatalog(t *testing.T) {
	m := Reference()
	require.NoError(t, m.Validate())

	cases := m.Cases()
	require.Len(t, cases, 13)

	assert.Equal(t, "samples/valid/1.lang", cases[0].Path)
	assert.Equal(t, "samples/valid/10.lang", cases[9].Path)
	for _, c := range cases[:10] {
		assert.Equal(t, KindValid, c.Kind)
		assert.Empty(t, c.ExpectedID)
	}

	assert.Equal(t, Case{
		ID:               "01",
		Path:             "samples/error/01.lang",
		Kind:             KindErroring,
		Stage:            StageLex,
		ExpectedID:       "lex-invalid-char",
		ExpectedLocation: "samples/error/01.lang:1:1",
	}, cases[10])
	assert.Equal(t, "samples/error/03.lang:2:9", cases[12].ExpectedLocation)
	assert.Equal(t, StageSyn, cases[12].Stage)
}

func TestCases_NumericOrderIndependentOfDeclaration(t *testing.T) {
	m := &Manifest{
		Name:      "shuffled",
		Extension: "lang",
		ValidRoot: "v",
		ErrorRoot: "e",
		Valid:     []string{"10", "2", "1"},
		Errors: []ErrorEntry{
			{ID: "12", Diagnostic: "lex-invalid-char", At: "1:1"},
			{ID: "03", Diagnostic: "lex-invalid-char", At: "1:1"},
		},
	}

	var paths []string
	for _, c := range m.Cases() {
		paths = append(paths, c.Path)
	}
	assert.Equal(t, []string{"v/1.lang", "v/2.lang", "v/10.lang", "e/03.lang", "e/12.lang"}, paths)

	// Declaration order in the manifest itself is untouched.
	assert.Equal(t, []string{"10", "2", "1"}, m.Valid)
}

func TestCases_SkipsDisabled(t *testing.T) {
	m := Reference()
	for _, c := range m.Cases() {
		assert.NotEqual(t, StageCFA, c.Stage, "reserved cfa fixtures must not run: %s", c.Path)
	}
}

func TestReference_ReservedFixturesFollowActiveOnes(t *testing.T) {
	m := Reference()
	var reserved []string
	seen := map[int]string{}
	for _, e := range m.Errors {
		n, err := strconv.Atoi(e.ID)
		require.NoError(t, err)
		if prev, ok := seen[n]; ok {
			t.Fatalf("error ids %q and %q are numerically equal", prev, e.ID)
		}
		seen[n] = e.ID
		if e.Disabled {
			reserved = append(reserved, e.ID)
		}
	}
	assert.Equal(t, []string{"04", "05"}, reserved)
}

func TestCases_RootTrailingSlashNotDoubled(t *testing.T) {
	m := &Manifest{Name: "x", Extension: "src", ValidRoot: "./fixtures/", Valid: []string{"1"}}
	assert.Equal(t, "./fixtures/1.src", m.Cases()[0].Path)
}

func TestValidate(t *testing.T) {
	base := func() *Manifest {
		return &Manifest{
			Name:      "m",
			Extension: "lang",
			ValidRoot: "v",
			ErrorRoot: "e",
			Valid:     []string{"1"},
			Errors:    []ErrorEntry{{ID: "01", Diagnostic: "lex-invalid-char", At: "1:1"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(m *Manifest)
		wantErr string
	}{
		{"ok", func(m *Manifest) {}, ""},
		{"missing name", func(m *Manifest) { m.Name = "" }, "name is required"},
		{"dotted extension", func(m *Manifest) { m.Extension = ".lang" }, "extension"},
		{"missing valid root", func(m *Manifest) { m.ValidRoot = "" }, "valid_root is required"},
		{"missing error root", func(m *Manifest) { m.ErrorRoot = "" }, "error_root is required"},
		{"non-numeric valid id", func(m *Manifest) { m.Valid = []string{"one"} }, "must be numeric"},
		{"duplicate valid id", func(m *Manifest) { m.Valid = []string{"1", "1"} }, "duplicate id"},
		{"duplicate error id", func(m *Manifest) { m.Errors = append(m.Errors, m.Errors[0]) }, "duplicate id"},
		{"missing diagnostic", func(m *Manifest) { m.Errors[0].Diagnostic = "" }, "diagnostic is required"},
		{"zero line", func(m *Manifest) { m.Errors[0].At = "0:1" }, "1-based"},
		{"missing column", func(m *Manifest) { m.Errors[0].At = "3" }, "line:column"},
		{"bad stage", func(m *Manifest) { m.Errors[0].Stage = StageOutput }, "stage"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := base()
			tc.mutate(m)
			err := m.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLint(t *testing.T) {
	m := Reference()
	assert.Empty(t, m.Lint(KnownDiagnostics))

	m.Errors = append(m.Errors, ErrorEntry{ID: "06", Diagnostic: "sema-unknown-type", At: "1:1"})
	warnings := m.Lint(KnownDiagnostics)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "sema-unknown-type")

	// Unknown codes are advisory only.
	assert.NoError(t, m.Validate())
}

func TestLoad_YAML(t *testing.T) {
	path := writeManifest(t, "samples.yaml", `
name: lang-samples
valid_root: samples/valid
error_root: samples/error
valid: ["2", "1"]
errors:
  - id: "01"
    diagnostic: lex-invalid-char
    at: "1:1"
  - id: "04"
    diagnostic: cfa-early-return-stmt
    at: "2:5"
    disabled: true
`)

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lang", m.Extension, "extension defaults to lang")

	cases := m.Cases()
	require.Len(t, cases, 3)
	assert.Equal(t, "samples/valid/1.lang", cases[0].Path)
	assert.Equal(t, "samples/error/01.lang:1:1", cases[2].ExpectedLocation)
}

func TestLoad_YAMLRejectsUnknownFields(t *testing.T) {
	path := writeManifest(t, "typo.yml", `
name: lang-samples
valid_root: samples/valid
vaild: ["1"]
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoad_YAMLValidates(t *testing.T) {
	path := writeManifest(t, "bad.yaml", `
name: lang-samples
error_root: samples/error
errors:
  - id: "01"
    diagnostic: lex-invalid-char
    at: "1"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid manifest")
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeManifest(t, "samples.toml", `name = "x"`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported manifest extension")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read manifest")
}
