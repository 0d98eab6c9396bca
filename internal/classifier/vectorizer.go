package classifier

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Vectorizer converts a document into an L2-normalized TF-IDF vector over a
// vocabulary learned at fit time.
type Vectorizer struct {
	Vocabulary  map[string]int // term -> column index
	IDF         []float64      // one weight per column
	StopWords   map[string]bool
	MaxFeatures int
}

func NewVectorizer(stopwords []string, maxFeatures int) *Vectorizer {
	sw := make(map[string]bool, len(stopwords))
	for _, w := range stopwords {
		sw[w] = true
	}
	return &Vectorizer{
		Vocabulary:  make(map[string]int),
		StopWords:   sw,
		MaxFeatures: maxFeatures,
	}
}

// Fit builds the vocabulary from the corpus. Terms are ranked by total corpus
// frequency and capped at MaxFeatures; ties break lexicographically so fitting
// is deterministic. IDF uses the smoothed form ln((1+n)/(1+df)) + 1.
func (v *Vectorizer) Fit(docs []string) {
	corpusFreq := make(map[string]int)
	docFreq := make(map[string]int)

	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, tok := range Tokenize(doc) {
			if v.StopWords[tok] {
				continue
			}
			corpusFreq[tok]++
			if !seen[tok] {
				seen[tok] = true
				docFreq[tok]++
			}
		}
	}

	terms := make([]string, 0, len(corpusFreq))
	for t := range corpusFreq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if corpusFreq[terms[i]] != corpusFreq[terms[j]] {
			return corpusFreq[terms[i]] > corpusFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		terms = terms[:v.MaxFeatures]
	}
	// Stable column order independent of frequency ranking.
	sort.Strings(terms)

	n := float64(len(docs))
	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, t := range terms {
		v.Vocabulary[t] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[t]))) + 1
	}
}

// Transform maps one document to a dense TF-IDF row. Terms outside the
// vocabulary are ignored. The row is L2-normalized unless it is all zeros.
func (v *Vectorizer) Transform(doc string) []float64 {
	x := make([]float64, len(v.IDF))
	for _, tok := range Tokenize(doc) {
		if idx, ok := v.Vocabulary[tok]; ok {
			x[idx]++
		}
	}
	for i := range x {
		x[i] *= v.IDF[i]
	}
	if norm := floats.Norm(x, 2); norm > 0 {
		floats.Scale(1/norm, x)
	}
	return x
}

// Dim returns the vocabulary size.
func (v *Vectorizer) Dim() int { return len(v.IDF) }

// LoadStopwords reads one stop-word per line, skipping blank lines.
func LoadStopwords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load stopwords: %w", err)
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if w := strings.TrimSpace(sc.Text()); w != "" {
			words = append(words, w)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("load stopwords: %w", err)
	}
	return words, nil
}
