// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package brief

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

const (
	maxNGram    = 3
	maxFeatures = 5000
)

// tokenPattern matches words of two or more letters, digits or underscores.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// stopWords are dropped before n-grams are built.
var stopWords = toSet(`a about above after again against all almost also am among an and any are
around as at be because been before being below between both but by can cannot could
did do does doing done down during each either else enough even ever every few for from
further get give go had has hasnt have having he her here hers herself him himself his how
however i if in into is it its itself just last least less made many may me might mine more
most mostly much must my myself neither never no nor not now of off often on once one only
or other others otherwise our ours ourselves out over own per perhaps please put rather
same see seem seemed seems several she should since so some such than that the their
theirs them themselves then there therefore these they this those though through thus to
together too toward towards under until up upon us very via was we well were what whatever
when where whether which while who whom whose why will with within without would yet you
your yours yourself yourselves`)

func toSet(words string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// TopTerms ranks the 1- to 3-word terms of docs by summed TF-IDF weight,
// highest first with ties broken alphabetically, and returns at most topK.
// Each document's vector is L2-normalized and IDF is smoothed:
// ln((1+n)/(1+df)) + 1. Only the maxFeatures most frequent terms are kept.
func TopTerms(docs []string, topK int) []string {
	var counts []map[string]int
	for _, d := range docs {
		if strings.TrimSpace(d) == "" {
			continue
		}
		counts = append(counts, ngramCounts(d))
	}
	if len(counts) == 0 || topK <= 0 {
		return nil
	}

	df := map[string]int{}
	total := map[string]int{}
	for _, c := range counts {
		for term, n := range c {
			df[term]++
			total[term] += n
		}
	}
	vocab := make([]string, 0, len(total))
	for term := range total {
		vocab = append(vocab, term)
	}
	if len(vocab) > maxFeatures {
		sort.Slice(vocab, func(i, j int) bool {
			if total[vocab[i]] != total[vocab[j]] {
				return total[vocab[i]] > total[vocab[j]]
			}
			return vocab[i] < vocab[j]
		})
		vocab = vocab[:maxFeatures]
	}
	keep := make(map[string]struct{}, len(vocab))
	for _, term := range vocab {
		keep[term] = struct{}{}
	}

	n := float64(len(counts))
	weight := map[string]float64{}
	for _, c := range counts {
		terms := make([]string, 0, len(c))
		for term := range c {
			if _, ok := keep[term]; ok {
				terms = append(terms, term)
			}
		}
		sort.Strings(terms)

		row := make(map[string]float64, len(terms))
		var norm float64
		for _, term := range terms {
			v := float64(c[term]) * (math.Log((1+n)/(1+float64(df[term]))) + 1)
			row[term] = v
			norm += v * v
		}
		norm = math.Sqrt(norm)
		for term, v := range row {
			weight[term] += v / norm
		}
	}

	sort.Slice(vocab, func(i, j int) bool {
		if weight[vocab[i]] != weight[vocab[j]] {
			return weight[vocab[i]] > weight[vocab[j]]
		}
		return vocab[i] < vocab[j]
	})
	return vocab[:min(topK, len(vocab))]
}

// ngramCounts lower-cases doc, drops stop words and counts every 1- to
// 3-token sequence of the remaining tokens.
func ngramCounts(doc string) map[string]int {
	var tokens []string
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(doc), -1) {
		if _, stop := stopWords[tok]; !stop {
			tokens = append(tokens, tok)
		}
	}
	counts := map[string]int{}
	for size := 1; size <= maxNGram; size++ {
		for i := 0; i+size <= len(tokens); i++ {
			counts[strings.Join(tokens[i:i+size], " ")]++
		}
	}
	return counts
}
