package model

import (
	"fmt"
	"math"
	"sort"
)

// Rank converts a raw probability vector into at most MaxPredictions
// predictions above ConfidenceThreshold, highest confidence first.
// Indices without a label get a "Plaga <index>" placeholder.
func Rank(probs []float32, labels []string) []Prediction {
	results := make([]Prediction, 0, MaxPredictions)
	for i, p := range probs {
		// negated so NaN scores are dropped
		if !(p > ConfidenceThreshold) {
			continue
		}
		results = append(results, Prediction{
			Label:      labelAt(labels, i),
			Confidence: int(math.Round(float64(p) * 100)),
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Confidence > results[b].Confidence
	})

	if len(results) > MaxPredictions {
		results = results[:MaxPredictions]
	}
	return results
}

func labelAt(labels []string, i int) string {
	if i < len(labels) && labels[i] != "" {
		return labels[i]
	}
	return fmt.Sprintf("Plaga %d", i)
}
