package match

import (
	"math"
	"sort"
	"strings"
)

// VectorizerConfig controls vocabulary construction and term weighting.
type VectorizerConfig struct {
	MaxFeatures     int     // vocabulary cap, most frequent terms win
	NGramMin        int     // smallest word n-gram length
	NGramMax        int     // largest word n-gram length
	MinDocFreq      int     // terms in fewer documents are dropped as noise; zero keeps every term
	MaxDocFreqRatio float64 // terms in more than this fraction of documents are dropped as filler
}

// DefaultVectorizerConfig mirrors the tuning the matcher was calibrated with.
func DefaultVectorizerConfig() VectorizerConfig {
	return VectorizerConfig{
		MaxFeatures:     10000,
		NGramMin:        1,
		NGramMax:        3,
		MinDocFreq:      2,
		MaxDocFreqRatio: 0.8,
	}
}

func (c VectorizerConfig) withDefaults() VectorizerConfig {
	d := DefaultVectorizerConfig()
	if c.MaxFeatures <= 0 {
		c.MaxFeatures = d.MaxFeatures
	}
	if c.NGramMin <= 0 {
		c.NGramMin = d.NGramMin
	}
	if c.NGramMax < c.NGramMin {
		c.NGramMax = c.NGramMin
	}
	// Zero MinDocFreq means no pruning, not the calibrated default of 2.
	if c.MinDocFreq <= 0 {
		c.MinDocFreq = 1
	}
	if c.MaxDocFreqRatio <= 0 || c.MaxDocFreqRatio > 1 {
		c.MaxDocFreqRatio = 1
	}
	return c
}

// Vector is a sparse unit-length TF-IDF document vector. Terms holds
// vocabulary indices in ascending order; Weights is parallel to it. A
// document with no in-vocabulary terms has an empty (zero) vector.
type Vector struct {
	Terms   []int
	Weights []float64
}

// IsZero reports whether the vector has no non-zero components.
func (v Vector) IsZero() bool {
	return len(v.Terms) == 0
}

// Dot returns the inner product of two vectors. For unit-length vectors this
// is the cosine similarity. Normalization leaves a little floating-point
// noise, so identical documents can multiply out to slightly above 1; the
// result is clamped so callers always see a score in [0, 1].
func (v Vector) Dot(other Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Terms) && j < len(other.Terms) {
		switch {
		case v.Terms[i] == other.Terms[j]:
			sum += v.Weights[i] * other.Weights[j]
			i++
			j++
		case v.Terms[i] < other.Terms[j]:
			i++
		default:
			j++
		}
	}
	return math.Min(sum, 1)
}

// Vectorizer fits a TF-IDF weighting over a corpus and projects documents
// into the resulting vector space. It must be fit on the union of both
// inventories' composite texts so scores from the two sides are comparable.
type Vectorizer struct {
	vocab map[string]int
	idf   []float64
	cfg   VectorizerConfig
}

// NewVectorizer creates a vectorizer, filling zero config fields with defaults.
func NewVectorizer(cfg VectorizerConfig) *Vectorizer {
	return &Vectorizer{cfg: cfg.withDefaults()}
}

// Fit builds the vocabulary and IDF weights from the corpus. Terms outside
// the document-frequency bounds are dropped; if the cap still overflows, the
// most frequent terms across the corpus are kept. An empty vocabulary is not
// an error: every transformed document is then a zero vector.
func (v *Vectorizer) Fit(corpus []string) {
	docFreq := make(map[string]int)
	termFreq := make(map[string]int)

	for _, doc := range corpus {
		terms := v.ngrams(doc)
		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			termFreq[t]++
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				docFreq[t]++
			}
		}
	}

	numDocs := len(corpus)
	maxDF := int(v.cfg.MaxDocFreqRatio * float64(numDocs))

	kept := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df < v.cfg.MinDocFreq || df > maxDF {
			continue
		}
		kept = append(kept, term)
	}

	if len(kept) > v.cfg.MaxFeatures {
		sort.Slice(kept, func(i, j int) bool {
			if termFreq[kept[i]] != termFreq[kept[j]] {
				return termFreq[kept[i]] > termFreq[kept[j]]
			}
			return kept[i] < kept[j]
		})
		kept = kept[:v.cfg.MaxFeatures]
	}
	sort.Strings(kept)

	v.vocab = make(map[string]int, len(kept))
	v.idf = make([]float64, len(kept))
	for i, term := range kept {
		v.vocab[term] = i
		// Smoothed IDF; never zero, so rare terms always carry weight.
		v.idf[i] = math.Log(float64(1+numDocs)/float64(1+docFreq[term])) + 1
	}
}

// Transform projects documents into the fitted space. Each output vector is
// normalized to unit length unless it is zero.
func (v *Vectorizer) Transform(texts []string) []Vector {
	vectors := make([]Vector, len(texts))
	for i, text := range texts {
		vectors[i] = v.transformOne(text)
	}
	return vectors
}

func (v *Vectorizer) transformOne(text string) Vector {
	counts := make(map[int]int)
	for _, term := range v.ngrams(text) {
		if idx, ok := v.vocab[term]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return Vector{}
	}

	terms := make([]int, 0, len(counts))
	for idx := range counts {
		terms = append(terms, idx)
	}
	sort.Ints(terms)

	weights := make([]float64, len(terms))
	var norm float64
	for i, idx := range terms {
		w := float64(counts[idx]) * v.idf[idx]
		weights[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for i := range weights {
		weights[i] /= norm
	}

	return Vector{Terms: terms, Weights: weights}
}

// VocabularySize returns the number of terms retained by Fit.
func (v *Vectorizer) VocabularySize() int {
	return len(v.vocab)
}

// ngrams produces word n-grams of the configured lengths. Input is expected
// to already be normalized composite text.
func (v *Vectorizer) ngrams(text string) []string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	var terms []string
	for n := v.cfg.NGramMin; n <= v.cfg.NGramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}
