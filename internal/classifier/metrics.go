package classifier

import (
	"fmt"
	"sort"
	"strings"
)

// AUC computes the area under the ROC curve from scores and binary labels
// using the rank statistic, with average ranks for tied scores. Returns
// ok=false when only one class is present.
func AUC(scores, labels []float64) (float64, bool) {
	type pair struct {
		score float64
		label float64
	}
	pairs := make([]pair, len(scores))
	for i := range scores {
		pairs[i] = pair{scores[i], labels[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score < pairs[j].score })

	var nPos, nNeg, rankSum float64
	i := 0
	for i < len(pairs) {
		j := i
		for j < len(pairs) && pairs[j].score == pairs[i].score {
			j++
		}
		// average rank for the tie group (1-based ranks)
		avgRank := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			if pairs[k].label > 0 {
				rankSum += avgRank
			}
		}
		i = j
	}
	for _, p := range pairs {
		if p.label > 0 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0, false
	}
	return (rankSum - nPos*(nPos+1)/2) / (nPos * nNeg), true
}

// classStats holds the confusion counts for one class treated as positive.
type classStats struct {
	tp, fp, fn, support int
}

func (s classStats) precision() float64 { return safeDiv(s.tp, s.tp+s.fp) }
func (s classStats) recall() float64    { return safeDiv(s.tp, s.tp+s.fn) }
func (s classStats) f1() float64 {
	p, r := s.precision(), s.recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// ClassificationReport renders per-class precision/recall/F1/support plus
// overall accuracy for binary predictions.
func ClassificationReport(predicted, labels []float64) string {
	stats := map[int]*classStats{0: {}, 1: {}}
	correct := 0
	for i := range labels {
		truth, pred := int(labels[i]), int(predicted[i])
		stats[truth].support++
		if pred == truth {
			correct++
			stats[truth].tp++
		} else {
			stats[pred].fp++
			stats[truth].fn++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%12s %10s %10s %10s %10s\n", "", "precision", "recall", "f1-score", "support")
	for _, cls := range []int{0, 1} {
		s := stats[cls]
		fmt.Fprintf(&b, "%12d %10.3f %10.3f %10.3f %10d\n",
			cls, s.precision(), s.recall(), s.f1(), s.support)
	}
	fmt.Fprintf(&b, "%12s %10s %10s %10.3f %10d\n",
		"accuracy", "", "", safeDiv(correct, len(labels)), len(labels))
	return b.String()
}

func safeDiv(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
