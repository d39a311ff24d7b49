package fixture

// Kind distinguishes fixtures the compiler must accept from fixtures it
// must reject.
type Kind string

const (
	KindValid    Kind = "valid"
	KindErroring Kind = "error"
)

// Case is one fixture of the catalog. Cases are built once from a manifest
// and never modified afterwards.
type Case struct {
	// ID is the manifest identifier ("1", "01").
	ID string `json:"id"`

	// Path is passed verbatim to the compiler.
	Path string `json:"path"`

	Kind  Kind  `json:"kind"`
	Stage Stage `json:"stage"`

	// ExpectedID and ExpectedLocation are set for erroring cases only.
	ExpectedID       string `json:"expected_id,omitempty"`
	ExpectedLocation string `json:"expected_location,omitempty"`
}

// IsErroring reports whether the compiler is expected to reject the fixture.
func (c *Case) IsErroring() bool {
	return c.Kind == KindErroring
}
