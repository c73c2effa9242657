// Package freq holds the two-level author -> word -> count model and the single
// merge primitive every aggregation step is built on.
//
// Keys are Go strings used as raw byte sequences: they are never validated as
// UTF-8, so usernames and words with undecodable bytes round-trip untouched.
// Counters saturate at math.MaxUint64 instead of wrapping.
package freq

import (
	"iter"
	"maps"
	"math/bits"
	"slices"
)

// WordCount maps a word to its occurrence count
type WordCount map[string]uint64

// Corpus maps an author to that author's WordCount
type Corpus map[string]WordCount

// SatAdd returns a+b, clamped to math.MaxUint64 on overflow
func SatAdd[C ~uint64](a, b C) C {
	s, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		return ^C(0)
	}
	return C(s)
}

// MergeCounts adds every count in src into dst with get-or-create-then-increment semantics.
// It is commutative and associative, so the order partial maps are merged in never changes the result
func MergeCounts[M ~map[K]C, K comparable, C ~uint64](dst, src M) {
	for k, n := range src {
		dst[k] = SatAdd(dst[k], n)
	}
}

// New returns an empty corpus
func New() Corpus { return Corpus{} }

// Add merges one author's counts into c
func (c Corpus) Add(author string, wc WordCount) {
	if len(wc) == 0 {
		// an author with no tokens still exists in the corpus
		if _, ok := c[author]; !ok {
			c[author] = WordCount{}
		}
		return
	}
	dst, ok := c[author]
	if !ok {
		dst = make(WordCount, len(wc))
		c[author] = dst
	}
	MergeCounts(dst, wc)
}

// Merge folds every author of src into c. src is left untouched
func (c Corpus) Merge(src Corpus) {
	for author, wc := range src {
		c.Add(author, wc)
	}
}

// Authors returns the number of authors
func (c Corpus) Authors() int { return len(c) }

// Entries returns the number of (author, word) pairs
func (c Corpus) Entries() int {
	n := 0
	for _, wc := range c {
		n += len(wc)
	}
	return n
}

// Equal reports whether two corpora hold identical author/word/count triples
func (c Corpus) Equal(o Corpus) bool {
	return maps.EqualFunc(c, o, func(a, b WordCount) bool { return maps.Equal(a, b) })
}

// Clone returns a deep copy of c
func (c Corpus) Clone() Corpus {
	out := make(Corpus, len(c))
	for a, wc := range c {
		out[a] = maps.Clone(wc)
	}
	return out
}

// SortedKeys returns the keys of m in ascending byte order
func SortedKeys[M ~map[string]V, V any](m M) []string {
	return slices.Sorted(maps.Keys(m))
}

// All yields authors in ascending byte order with their counts
func (c Corpus) All() iter.Seq2[string, WordCount] {
	return func(yield func(string, WordCount) bool) {
		for _, a := range SortedKeys(c) {
			if !yield(a, c[a]) {
				return
			}
		}
	}
}

// All yields words in ascending byte order with their counts
func (wc WordCount) All() iter.Seq2[string, uint64] {
	return func(yield func(string, uint64) bool) {
		for _, w := range SortedKeys(wc) {
			if !yield(w, wc[w]) {
				return
			}
		}
	}
}
