// Package ranking combines metric results into a composite score, a total
// order and the human readable recommendation and summary. It does no I/O.
package ranking

import (
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"truthtube/internal/models"
	"truthtube/shared/config"
)

const (
	recommendBest        = "Best choice - highest quality content"
	recommendAlternative = "Good alternative"
	recommendOther       = "Consider if other options don't meet your needs"
	degradedSuffix       = " (some metrics unavailable)"

	summaryTitleRunes = 50

	// compositeEpsilon absorbs float rounding in weighted sums, so equal
	// composites fall through to the density and title tie-breaks.
	compositeEpsilon = 1e-9
)

func score(r *models.MetricResult) float64 {
	if r == nil {
		return models.NeutralScore
	}
	return float64(r.Score)
}

// Composite is the weighted sum of the four metrics. Redundancy counts
// inverted: less redundancy means a higher composite.
func Composite(r *models.VideoReport, w config.WeightsConfig) float64 {
	return w.Density*score(r.Density) +
		w.Redundancy*(100-score(r.Redundancy)) +
		w.TitleRelevance*score(r.TitleRelevance) +
		w.Originality*score(r.Originality)
}

// Rank returns copies of reports ordered best first with Composite, Rank and
// Recommendation filled in. reports must be in submission order; that order
// breaks ties left after composite, density and title relevance.
func Rank(reports []*models.VideoReport, w config.WeightsConfig) []*models.VideoReport {
	ranked := make([]*models.VideoReport, len(reports))
	for i, r := range reports {
		cp := *r
		cp.Composite = Composite(r, w)
		ranked[i] = &cp
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if math.Abs(a.Composite-b.Composite) > compositeEpsilon {
			return a.Composite > b.Composite
		}
		if da, db := score(a.Density), score(b.Density); da != db {
			return da > db
		}
		return score(a.TitleRelevance) > score(b.TitleRelevance)
	})

	for i, r := range ranked {
		r.Rank = i + 1
		r.Recommendation = Recommendation(r.Rank, r.Degraded())
	}
	return ranked
}

// Recommendation is the fixed phrase for a rank tier.
func Recommendation(rank int, degraded bool) string {
	var s string
	switch rank {
	case 1:
		s = recommendBest
	case 2:
		s = recommendAlternative
	default:
		s = recommendOther
	}
	if degraded {
		s += degradedSuffix
	}
	return s
}

// Summary describes a ranked result set. failed counts the URLs that were
// excluded before ranking.
func Summary(ranked []*models.VideoReport, failed int) string {
	if len(ranked) == 0 {
		return "No videos were analyzed."
	}

	best := ranked[0]
	s := fmt.Sprintf("Analyzed %d %s. Top recommendation: '%s' with density score %d/100 and originality score %d/100.",
		len(ranked), plural(len(ranked), "video", "videos"), shortTitle(best.Video),
		int(score(best.Density)), int(score(best.Originality)))
	if failed > 0 {
		s += fmt.Sprintf(" %d %s could not be analyzed.", failed, plural(failed, "URL", "URLs"))
	}
	return s
}

func shortTitle(v *models.ResolvedVideo) string {
	if v == nil {
		return ""
	}
	if utf8.RuneCountInString(v.Title) <= summaryTitleRunes {
		return v.Title
	}
	runes := []rune(v.Title)
	return string(runes[:summaryTitleRunes]) + "..."
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
