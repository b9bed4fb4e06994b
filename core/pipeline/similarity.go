package pipeline

import "math"

// Rerank scores each document against the query by embedding both and
// taking cosine similarity. The query is embedded once. Fail-open: any
// embedding error yields all-zero scores, leaving the caller's existing
// order untouched.
func Rerank(embed EmbedFunc, query string, docs []string) []float64 {
	scores := make([]float64, len(docs))
	if embed == nil || len(docs) == 0 {
		return scores
	}

	queryVec, err := EmbedText(embed, query)
	if err != nil || len(queryVec) == 0 {
		return scores
	}

	for i, doc := range docs {
		docVec, err := EmbedText(embed, doc)
		if err != nil || len(docVec) == 0 {
			continue
		}
		scores[i] = CosineSimilarity(queryVec, docVec)
	}
	return scores
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths and zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
