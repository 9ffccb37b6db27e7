// Package textnorm reduces free text to a compact, stemmed token string
// before it is embedded.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

var (
	// "don't" -> "do n't", "can't" -> "ca n't"
	negationClitic = regexp.MustCompile(`([\p{L}\p{N}])n't\b`)

	// Order matters: joined forms first, then plain runs, then single marks.
	tokenPattern = regexp.MustCompile(
		`n't|'(?:s|m|d|ll|re|ve)\b|` +
			`\p{N}+(?:[.,]\p{N}+)+|` +
			`[\p{L}\p{N}]+(?:-[\p{L}\p{N}]+)+|` +
			`[\p{L}\p{N}_]+|` +
			`[^\s\p{L}\p{N}_]`,
	)
)

// Normalizer turns text into the form that is sent to embedding models.
type Normalizer interface {
	Normalize(text string) string
}

// English tokenizes, drops punctuation and stopwords, and stems with the
// Snowball English stemmer.
type English struct{}

// NewEnglish returns the English normalizer.
func NewEnglish() English {
	return English{}
}

// Normalize implements Normalizer.
func (English) Normalize(text string) string {
	return Normalize(text)
}

// Normalize lowercases and tokenizes text, keeps tokens that are purely
// alphanumeric and not stopwords, stems them and joins them with single
// spaces. The result may be empty.
func Normalize(text string) string {
	tokens := Tokenize(strings.ToLower(text))

	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !isAlnum(tok) || IsStopword(tok) {
			continue
		}
		kept = append(kept, english.Stem(tok, false))
	}
	return strings.Join(kept, " ")
}

// Tokenize splits text on word boundaries. Punctuation becomes its own
// token and negation contractions are split off ("do", "n't").
func Tokenize(text string) []string {
	text = negationClitic.ReplaceAllString(text, "$1 n't")
	return tokenPattern.FindAllString(text, -1)
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
