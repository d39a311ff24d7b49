package fixture

import (
	"fmt"
	"strings"
)

// Stage names the compiler pipeline phase a fixture exercises.
type Stage string

const (
	StageAll    Stage = "all"
	StageLex    Stage = "lex"
	StageSyn    Stage = "syn"
	StageCFA    Stage = "cfa"
	StageOutput Stage = "output"
)

// Stages lists the accepted selector values.
var Stages = []Stage{StageAll, StageLex, StageSyn, StageCFA, StageOutput}

// ParseStage validates a selector value.
func ParseStage(s string) (Stage, error) {
	for _, st := range Stages {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid pipeline %q: must be one of %v", s, Stages)
}

// inferStage maps a diagnostic code to the phase that reports it.
// Unrecognised prefixes have no stage and only run under StageAll.
func inferStage(diagnostic string) Stage {
	switch {
	case strings.HasPrefix(diagnostic, "lex-"):
		return StageLex
	case strings.HasPrefix(diagnostic, "parse-"):
		return StageSyn
	case strings.HasPrefix(diagnostic, "cfa-"):
		return StageCFA
	default:
		return ""
	}
}

// Filter returns the cases belonging to stage, preserving order.
func Filter(cases []Case, stage Stage) []Case {
	if stage == StageAll || stage == "" {
		return cases
	}
	out := make([]Case, 0, len(cases))
	for _, c := range cases {
		if c.Stage == stage {
			out = append(out, c)
		}
	}
	return out
}
