// Package fixture holds the expectation model for a conformance run.
//
// A manifest associates fixture identifiers with source paths and, for
// erroring fixtures, with the single diagnostic the compiler must report.
// Manifests are written in YAML or CUE:
//
//	name: lang-samples
//	extension: lang
//	valid_root: samples/valid
//	error_root: samples/error
//	valid: ["1", "2", "3"]
//	errors:
//	  - id: "01"
//	    diagnostic: lex-invalid-char
//	    at: "1:1"
//	  - id: "04"
//	    diagnostic: cfa-early-return-stmt
//	    at: "2:5"
//	    disabled: true
//
// Manifest.Cases turns a manifest into the ordered catalog the harness
// iterates. Order is ascending numeric identifier within each group, valid
// fixtures first, and never depends on directory listing order.
package fixture
