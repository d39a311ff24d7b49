package fixture

const defaultExtension = "lang"

// KnownDiagnostics are the taxonomy codes the reference compiler emits or
// has reserved.
var KnownDiagnostics = []string{
	"lex-invalid-char",
	"parse-unexpected-eof",
	"parse-unexpected-token",
	"cfa-early-return-stmt",
	"cfa-invalid-break-stmt",
}

// Reference returns the catalog the compiler's own test script runs. The
// control-flow fixtures are reserved and disabled.
func Reference() *Manifest {
	return &Manifest{
		Name:      "lang-samples",
		Extension: defaultExtension,
		ValidRoot: "samples/valid",
		ErrorRoot: "samples/error",
		Valid:     []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"},
		Errors: []ErrorEntry{
			{ID: "01", Diagnostic: "lex-invalid-char", At: "1:1"},
			{ID: "02", Diagnostic: "parse-unexpected-eof", At: "1:1"},
			{ID: "03", Diagnostic: "parse-unexpected-token", At: "2:9"},
			{ID: "04", Diagnostic: "cfa-early-return-stmt", At: "2:5", Disabled: true},
			{ID: "05", Diagnostic: "cfa-invalid-break-stmt", At: "2:5", Disabled: true},
		},
	}
}
