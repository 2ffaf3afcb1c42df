package lexical

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\b\w+\b`)

const snippetWindow = 200

// tokenize normalizes text into lowercase tokens of length >= 2, matching
// \b\w+\b.
func tokenize(s string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(s), -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if len(t) >= 2 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

type posting struct {
	docIndex int
	tf       float64 // count / tokens-in-doc
}

// TFIDFIndex is a from-scratch inverted index: token -> posting list,
// scored by tf*idf (tf=count/tokens-in-doc, idf=ln(N/df)).
type TFIDFIndex struct {
	docs     []Document
	tokens   [][]string // per-doc token list, for snippet extraction
	postings map[string][]posting
	docFreq  map[string]int
}

// NewTFIDFIndex returns an unbuilt TFIDFIndex.
func NewTFIDFIndex() *TFIDFIndex {
	return &TFIDFIndex{}
}

func (idx *TFIDFIndex) Build(ctx context.Context, docs []Document) error {
	postings := make(map[string][]posting)
	docFreq := make(map[string]int)
	tokensPerDoc := make([][]string, len(docs))

	for i, d := range docs {
		toks := tokenize(d.Content)
		tokensPerDoc[i] = toks

		counts := make(map[string]int, len(toks))
		for _, t := range toks {
			counts[t]++
		}
		total := len(toks)
		for term, c := range counts {
			tf := 0.0
			if total > 0 {
				tf = float64(c) / float64(total)
			}
			postings[term] = append(postings[term], posting{docIndex: i, tf: tf})
			docFreq[term]++
		}
	}

	idx.docs = docs
	idx.tokens = tokensPerDoc
	idx.postings = postings
	idx.docFreq = docFreq
	return nil
}

func (idx *TFIDFIndex) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	if len(idx.docs) == 0 {
		return nil, nil
	}

	n := float64(len(idx.docs))
	queryTerms := tokenize(query)
	if len(queryTerms) == 0 {
		return nil, nil
	}

	scores := make(map[int]float64)
	matchedTerm := make(map[int]string)
	for _, term := range queryTerms {
		df := idx.docFreq[term]
		if df == 0 {
			continue
		}
		idf := math.Log(n / float64(df))
		for _, p := range idx.postings[term] {
			scores[p.docIndex] += p.tf * idf
			if _, ok := matchedTerm[p.docIndex]; !ok {
				matchedTerm[p.docIndex] = term
			}
		}
	}

	hits := make([]Hit, 0, len(scores))
	for docIndex, score := range scores {
		hits = append(hits, Hit{
			ID:      idx.docs[docIndex].ID,
			Score:   score,
			Snippet: extractSnippet(idx.docs[docIndex].Content, matchedTerm[docIndex]),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})

	if k > 0 && k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func (idx *TFIDFIndex) DocCount() int {
	return len(idx.docs)
}

// extractSnippet returns up to snippetWindow characters of content
// centered on the first case-insensitive occurrence of term.
func extractSnippet(content, term string) string {
	if term == "" || content == "" {
		return truncate(content, snippetWindow)
	}
	lower := strings.ToLower(content)
	pos := strings.Index(lower, strings.ToLower(term))
	if pos < 0 {
		return truncate(content, snippetWindow)
	}

	half := snippetWindow / 2
	start := pos - half
	if start < 0 {
		start = 0
	}
	end := start + snippetWindow
	if end > len(content) {
		end = len(content)
		start = end - snippetWindow
		if start < 0 {
			start = 0
		}
	}
	return content[start:end]
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
