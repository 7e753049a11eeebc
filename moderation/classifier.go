// Package moderation is the gate in front of the Global Lounge: a sliding
// window rate limiter and a substring profanity classifier. Everything here
// is local and synchronous; the gate never calls the network.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Classifier detects banned terms as substrings of a normalized text.
// Normalization lowercases, maps common leet-speak digits back to letters
// and strips everything that is not a letter, so "B.4.d w0rd" still
// matches. Compound-word false positives are a known limitation of the
// coarse substring approach.
type Classifier struct {
	matcher *goahocorasick.Machine
}

// DefaultBannedTerms is the stock list the portal ships with. Deployments
// extend it through configuration.
var DefaultBannedTerms = []string{
	"fuck", "shit", "bitch", "asshole", "bastard", "dickhead", "cunt",
}

// NewClassifier builds the Aho-Corasick automaton over the normalized terms.
func NewClassifier(bannedTerms []string) (*Classifier, error) {
	patterns := make([][]rune, 0, len(bannedTerms))
	for _, term := range bannedTerms {
		normalized := normalizeRunes([]rune(term))
		if len(normalized) == 0 {
			continue
		}
		patterns = append(patterns, normalized)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Classifier{matcher: m}, nil
}

// Detect returns the banned terms found in text, normalized form, in match
// order. An empty result means the text is clean.
func (c *Classifier) Detect(text string) []string {
	normalized := normalizeRunes([]rune(text))
	if len(normalized) == 0 {
		return nil
	}
	spans := c.matcher.MultiPatternSearch(normalized, false)
	if len(spans) == 0 {
		return nil
	}
	found := make([]string, 0, len(spans))
	for _, span := range spans {
		found = append(found, string(span.Word))
	}
	return found
}

// normalizeRunes lowercases, simplifies leet speak and drops non-letters.
func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if !unicode.IsLetter(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune maps common leet-speak characters back to their standard
// alphabet counterparts before the letters-only cut.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
