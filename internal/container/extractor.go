package container

import (
	"regexp"
	"strings"
)

// Candidate patterns, applied in priority order. A substring may match more
// than one of them; duplicates are removed afterwards.
var patterns = []*regexp.Regexp{
	// 4 letters + 7 digits
	regexp.MustCompile(`\b[A-Z]{4}\s*\d{7}\b`),
	// 4 letters + 6 digits + separate check digit
	regexp.MustCompile(`\b[A-Z]{4}\s*\d{6}\s*\d\b`),
	// 4 letters, then 3+3+1 digit groups
	regexp.MustCompile(`\b[A-Z]{4}[-\s]*\d{3}[-\s]*\d{3}[-\s]*\d\b`),
	// owner code misread as digits
	regexp.MustCompile(`\b[A-Z0-9]{4}[-\s]*\d{6,7}\b`),
}

var (
	noiseChars = regexp.MustCompile(`[^\p{L}\p{N}\s-]`)
	separators = regexp.MustCompile(`[-\s]+`)
	// shape checks tolerate spaces and hyphens only
	shapeSeparators = regexp.MustCompile(`[ -]+`)
	shape           = regexp.MustCompile(`^[A-Z]{4}\d{6,7}$`)
)

// Extract scans recognized text for container identifiers. The result keeps
// the order in which identifiers are first found and holds no duplicates.
func Extract(text string) []string {
	cleaned := noiseChars.ReplaceAllString(strings.ToUpper(text), " ")

	found := []string{}
	seen := make(map[string]bool)
	for _, p := range patterns {
		for _, match := range p.FindAllString(cleaned, -1) {
			candidate := Clean(match)
			if !IsValidShape(candidate) || seen[candidate] {
				continue
			}
			seen[candidate] = true
			found = append(found, candidate)
		}
	}
	return found
}

// Clean uppercases s and strips whitespace and hyphens
func Clean(s string) string {
	return separators.ReplaceAllString(strings.ToUpper(s), "")
}

// IsValidShape reports whether s is 4 letters followed by 6 or 7 digits once
// spaces and hyphens are removed. Other whitespace is not a separator here.
// It does not look at the check digit.
func IsValidShape(s string) bool {
	cleaned := shapeSeparators.ReplaceAllString(strings.ToUpper(s), "")
	if len(cleaned) < 10 {
		return false
	}
	return shape.MatchString(cleaned)
}
