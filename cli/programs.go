package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/aledsdavies/cadence/core/routine"
	"github.com/aledsdavies/cadence/runtime/parser"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// readSource reads a routine file, or stdin for "-".
func readSource(file string, stdin io.Reader) (string, error) {
	if file == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("error opening file %s: %w", file, err)
	}
	return string(data), nil
}

// loadProgram reads and parses a routine file.
func loadProgram(file string, stdin io.Reader) (*routine.Program, string, error) {
	src, err := readSource(file, stdin)
	if err != nil {
		return nil, "", err
	}

	program, err := parser.Parse(src)
	if err != nil {
		var parseErr *parser.ParseError
		if errors.As(err, &parseErr) {
			return nil, src, &SourceError{File: file, Err: parseErr}
		}
		return nil, src, err
	}
	return program, src, nil
}

// selectProgram picks the exercise program to run. The name may be omitted
// when the document holds exactly one.
func selectProgram(doc *routine.Program, name string) (*routine.ExerciseProgram, error) {
	names := doc.Names()

	if name == "" {
		switch len(names) {
		case 0:
			return nil, &CLIError{Type: "program", Message: "the document defines no exercise programs"}
		case 1:
			ep, _ := doc.Lookup(names[0])
			return ep, nil
		default:
			return nil, &CLIError{
				Type:    "program",
				Message: "the document defines several exercise programs",
				Details: "Available: " + strings.Join(names, ", "),
				Hint:    "Choose one with --program",
			}
		}
	}

	if ep, ok := doc.Lookup(name); ok {
		return ep, nil
	}

	err := &CLIError{
		Type:    "program",
		Message: fmt.Sprintf("no exercise program named %q", name),
		Details: "Available: " + strings.Join(names, ", "),
	}
	if match := findClosestMatch(name, names); match != "" {
		err.Hint = fmt.Sprintf("Did you mean %q?", match)
	}
	return nil, err
}

// findClosestMatch finds the closest string match using fuzzy matching,
// falling back to edit distance for typos that are not subsequences.
func findClosestMatch(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDistance := "", -1
	lower := strings.ToLower(target)
	for _, candidate := range candidates {
		d := fuzzy.LevenshteinDistance(lower, strings.ToLower(candidate))
		if bestDistance < 0 || d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	if bestDistance > max(2, len(target)/3) {
		return ""
	}
	return best
}
