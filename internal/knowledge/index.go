// Package knowledge implements the document retrieval collaborator the
// Expert Pipeline queries for source material: a small TF-IDF index over a
// folder of plain-text documents, the Go-idiomatic replacement for the
// original sklearn TfidfVectorizer (original_source/modules/knowledge_base.py).
package knowledge

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/tsawler/prose/v3"
	"gonum.org/v1/gonum/floats"
)

// Result is one ranked hit returned by Search.
type Result struct {
	Text   string
	Source string
	Score  float64
}

// Index is a TF-IDF index over a fixed document set, loaded once per
// discipline.
type Index struct {
	docs    []string
	names   []string
	vocab   map[string]int
	vectors [][]float64
}

// New returns an empty index. Search on an empty index always returns nil,
// matching the boundary case the original knowledge base hits when a
// discipline has no documents.
func New() *Index {
	return &Index{}
}

// Load reads every *.txt file in dir (sorted by name for determinism),
// treats each as one document, and builds the TF-IDF matrix. A missing or
// empty directory leaves the index empty rather than erroring, since an
// empty knowledge base is a valid, documented state.
func (idx *Index) Load(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	idx.docs = nil
	idx.names = nil
	for i, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		idx.docs = append(idx.docs, string(data))
		idx.names = append(idx.names, docName(i, name))
	}
	idx.build()
	return nil
}

// LoadDocs builds the index directly from in-memory documents, used by
// callers that already have document text (tests, embedded content) rather
// than a folder on disk.
func (idx *Index) LoadDocs(docs []string, names []string) {
	idx.docs = docs
	idx.names = names
	idx.build()
}

func docName(i int, filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if base == "" {
		return indexedName(i)
	}
	return base
}

func indexedName(i int) string {
	return "doc_" + itoa(i+1)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func (idx *Index) build() {
	idx.vocab = nil
	idx.vectors = nil
	if len(idx.docs) == 0 {
		return
	}

	tokenized := make([][]string, len(idx.docs))
	df := make(map[string]int)
	for i, doc := range idx.docs {
		toks := Tokenize(doc)
		tokenized[i] = toks
		seen := make(map[string]bool)
		for _, t := range toks {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	vocab := make(map[string]int)
	for term := range df {
		vocab[term] = len(vocab)
	}
	idx.vocab = vocab

	n := float64(len(idx.docs))
	idf := make([]float64, len(vocab))
	for term, col := range vocab {
		idf[col] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	idx.vectors = make([][]float64, len(idx.docs))
	for i, toks := range tokenized {
		tf := make(map[string]int)
		for _, t := range toks {
			tf[t]++
		}
		vec := make([]float64, len(vocab))
		for term, count := range tf {
			col, ok := vocab[term]
			if !ok {
				continue
			}
			vec[col] = float64(count) * idf[col]
		}
		normalize(vec)
		idx.vectors[i] = vec
	}
}

func normalize(vec []float64) {
	norm := floats.Norm(vec, 2)
	if norm == 0 {
		return
	}
	floats.Scale(1/norm, vec)
}

func (idx *Index) vectorize(tokens []string) []float64 {
	vec := make([]float64, len(idx.vocab))
	tf := make(map[string]int)
	for _, t := range tokens {
		tf[t]++
	}
	for term, count := range tf {
		col, ok := idx.vocab[term]
		if !ok {
			continue
		}
		vec[col] = float64(count)
	}
	normalize(vec)
	return vec
}

// Search ranks documents against query by cosine similarity and returns the
// topK highest-scoring. Returns nil if the index has no documents, the same
// empty-result boundary the original implementation returns for an
// unindexed discipline.
func (idx *Index) Search(query string, topK int) []Result {
	if len(idx.docs) == 0 {
		return nil
	}

	qVec := idx.vectorize(Tokenize(query))
	scores := make([]float64, len(idx.docs))
	for i, dVec := range idx.vectors {
		scores[i] = floats.Dot(qVec, dVec)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if topK > len(order) {
		topK = len(order)
	}
	results := make([]Result, topK)
	for i := 0; i < topK; i++ {
		d := order[i]
		results[i] = Result{Text: idx.docs[d], Source: idx.names[d], Score: scores[d]}
	}
	return results
}

// Tokenize lowercases text, tokenizes it with prose, and drops punctuation,
// pure-numeric tokens and Russian stopwords.
func Tokenize(text string) []string {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil
	}

	var out []string
	for _, tok := range doc.Tokens() {
		word := strings.ToLower(tok.Text)
		if word == "" || !hasLetter(word) {
			continue
		}
		if russianStopwords[word] {
			continue
		}
		out = append(out, word)
	}
	return out
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
