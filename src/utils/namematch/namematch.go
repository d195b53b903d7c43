// Package namematch compares a learner name read from a certificate with the name stored in the learner's
// profile. OCR output is noisy, so the comparison accepts partial matches.
package namematch

import (
	"fmt"
	"regexp"
	"strings"
)

type Outcome string

const (
	Matched       Outcome = "matched"
	Mismatched    Outcome = "mismatched"
	NotApplicable Outcome = "not_applicable"
)

// Failing check is only Mismatched, missing names pass
func (self Outcome) Passes() bool {
	return self != Mismatched
}

type Strictness string

const (
	// Normalized equality or containment only
	Strict Strictness = "strict"

	// All token rules
	Standard Strictness = "standard"

	// Token rules plus a shared 4 character substring anywhere in the raw names
	Lenient Strictness = "lenient"
)

func ParseStrictness(s string) (Strictness, error) {
	switch Strictness(strings.ToLower(strings.TrimSpace(s))) {
	case Strict:
		return Strict, nil
	case Standard:
		return Standard, nil
	case "", Lenient:
		return Lenient, nil
	}
	return "", fmt.Errorf("unknown name match strictness: %s", s)
}

const (
	minTokenLen     = 2
	affixLen        = 3
	fallbackLen     = 4
	minTokenOverlap = 0.5
)

var (
	nonWord    = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s]`)
	whitespace = regexp.MustCompile(`\s+`)
)

func normalize(name string) string {
	name = strings.ToLower(name)
	name = nonWord.ReplaceAllString(name, "")
	name = whitespace.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

func tokenize(normalized string) (out []string) {
	for _, token := range strings.Split(normalized, " ") {
		if len([]rune(token)) >= minTokenLen {
			out = append(out, token)
		}
	}
	return
}

func prefix(token string) (string, bool) {
	r := []rune(token)
	if len(r) < affixLen {
		return "", false
	}
	return string(r[:affixLen]), true
}

func suffix(token string) (string, bool) {
	r := []rune(token)
	if len(r) < affixLen {
		return "", false
	}
	return string(r[len(r)-affixLen:]), true
}

func shareAffix(a, b string) bool {
	if pa, ok := prefix(a); ok {
		if pb, ok := prefix(b); ok && pa == pb {
			return true
		}
	}
	if sa, ok := suffix(a); ok {
		if sb, ok := suffix(b); ok && sa == sb {
			return true
		}
	}
	return false
}

// Match compares the certificate name with the database name using the token rules. It never applies the
// 4 character fallback, see Matcher for that.
func Match(certificateName, databaseName string) Outcome {
	if strings.TrimSpace(certificateName) == "" || strings.TrimSpace(databaseName) == "" {
		return NotApplicable
	}

	a, b := normalize(certificateName), normalize(databaseName)
	if a == "" || b == "" {
		return NotApplicable
	}

	if a == b || strings.Contains(a, b) || strings.Contains(b, a) {
		return Matched
	}

	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return Mismatched
	}

	for _, x := range ta {
		for _, y := range tb {
			if shareAffix(x, y) {
				return Matched
			}
		}
	}

	if ta[0] == tb[0] || ta[len(ta)-1] == tb[len(tb)-1] {
		return Matched
	}

	shorter, longer := ta, tb
	if len(tb) < len(ta) {
		shorter, longer = tb, ta
	}
	matched := 0
	for _, x := range shorter {
		for _, y := range longer {
			if x == y {
				matched++
				break
			}
		}
	}
	if float64(matched)/float64(len(shorter)) >= minTokenOverlap {
		return Matched
	}

	return Mismatched
}

// Reports whether the lowercased raw names share any 4 character substring
func ShareSubstring(a, b string) bool {
	ra, rb := []rune(strings.ToLower(a)), []rune(strings.ToLower(b))
	if len(ra) < fallbackLen || len(rb) < fallbackLen {
		return false
	}

	seen := make(map[string]struct{}, len(ra))
	for i := 0; i+fallbackLen <= len(ra); i++ {
		seen[string(ra[i:i+fallbackLen])] = struct{}{}
	}
	for i := 0; i+fallbackLen <= len(rb); i++ {
		if _, ok := seen[string(rb[i:i+fallbackLen])]; ok {
			return true
		}
	}
	return false
}

// Applies the comparison at the configured strictness
type Matcher struct {
	strictness Strictness
}

func NewMatcher(strictness Strictness) *Matcher {
	return &Matcher{strictness: strictness}
}

func (self *Matcher) Strictness() Strictness {
	return self.strictness
}

func (self *Matcher) Match(certificateName, databaseName string) Outcome {
	switch self.strictness {
	case Strict:
		return matchStrict(certificateName, databaseName)
	case Standard:
		return Match(certificateName, databaseName)
	}

	outcome := Match(certificateName, databaseName)
	if outcome == Mismatched && ShareSubstring(certificateName, databaseName) {
		return Matched
	}
	return outcome
}

func matchStrict(certificateName, databaseName string) Outcome {
	a, b := normalize(certificateName), normalize(databaseName)
	if a == "" || b == "" {
		return NotApplicable
	}
	if a == b || strings.Contains(a, b) || strings.Contains(b, a) {
		return Matched
	}
	return Mismatched
}
