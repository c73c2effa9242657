// Package tokenize turns a comment body into per-token counts.
// Pipeline order
// 1 Drop every rune that is not alphanumeric or whitespace
// 2 Lowercase (Unicode, language neutral)
// 3 Split on whitespace runs
// 4 Count each non-empty token once per occurrence
package tokenize

import (
	"strings"
	"sync"
	"unicode"

	"userfreqs/internal/core/freq"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tokenizer is stateless and safe for concurrent use
type Tokenizer struct{}

// casers are not safe for concurrent use, so each goroutine borrows one
var casePool = sync.Pool{
	New: func() any {
		c := cases.Lower(language.Und)
		return &c
	},
}

// New constructs a Tokenizer
func New() *Tokenizer { return &Tokenizer{} }

// Count returns the token counts of body
func (t *Tokenizer) Count(body string) freq.WordCount {
	toks := Tokens(body)
	wc := make(freq.WordCount, len(toks))
	for _, w := range toks {
		wc[w]++
	}
	return wc
}

// Tokens returns the normalized tokens of body in input order
func Tokens(body string) []string {
	if body == "" {
		return nil
	}
	kept := strings.Map(keep, body)
	return strings.Fields(lower(kept))
}

// keep retains letters, numbers, alphabetic marks and whitespace; -1 drops the rune
func keep(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) || unicode.Is(unicode.Other_Alphabetic, r) {
		return r
	}
	return -1
}

func lower(s string) string {
	if isLowerASCII(s) {
		return s
	}
	c := casePool.Get().(*cases.Caser)
	out := c.String(s)
	casePool.Put(c)
	return out
}

// isLowerASCII reports whether s is pure ASCII with no uppercase letters
func isLowerASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b >= 0x80 || ('A' <= b && b <= 'Z') {
			return false
		}
	}
	return true
}
