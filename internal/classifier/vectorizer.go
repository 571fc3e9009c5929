package classifier

import (
	"sort"
	"strings"
)

// Vector is a sparse feature vector keyed by vocabulary index.
type Vector map[int]float64

// Vectorizer counts character n-grams. It lower-cases its input and
// collapses runs of whitespace before extracting n-grams.
type Vectorizer struct {
	MinN       int            `json:"min_n"`
	MaxN       int            `json:"max_n"`
	Vocabulary map[string]int `json:"vocabulary"`
}

func NewVectorizer(minN, maxN int) *Vectorizer {
	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}
	return &Vectorizer{MinN: minN, MaxN: maxN}
}

// Fit learns the vocabulary. Indices follow the lexical order of the
// n-grams so that two fits over the same corpus are identical.
func (v *Vectorizer) Fit(docs []string) {
	seen := make(map[string]struct{})
	for _, doc := range docs {
		v.each(doc, func(gram string) {
			seen[gram] = struct{}{}
		})
	}

	grams := make([]string, 0, len(seen))
	for g := range seen {
		grams = append(grams, g)
	}
	sort.Strings(grams)

	v.Vocabulary = make(map[string]int, len(grams))
	for i, g := range grams {
		v.Vocabulary[g] = i
	}
}

// Transform maps a document onto the fitted vocabulary. Unknown n-grams
// are dropped.
func (v *Vectorizer) Transform(doc string) Vector {
	vec := make(Vector)
	v.each(doc, func(gram string) {
		if idx, ok := v.Vocabulary[gram]; ok {
			vec[idx]++
		}
	})
	return vec
}

func (v *Vectorizer) FitTransform(docs []string) []Vector {
	v.Fit(docs)
	out := make([]Vector, len(docs))
	for i, doc := range docs {
		out[i] = v.Transform(doc)
	}
	return out
}

func (v *Vectorizer) NumFeatures() int {
	return len(v.Vocabulary)
}

func (v *Vectorizer) each(doc string, fn func(string)) {
	text := []rune(strings.ToLower(strings.Join(strings.Fields(doc), " ")))
	for n := v.MinN; n <= v.MaxN; n++ {
		for i := 0; i+n <= len(text); i++ {
			fn(string(text[i : i+n]))
		}
	}
}
