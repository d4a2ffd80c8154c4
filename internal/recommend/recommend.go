// Package recommend reduces a trip's availability votes into per-date
// scores and the set of best dates. Results are always derived from the
// aggregate passed in; nothing is stored.
package recommend

import (
	"github.com/rongwang/tripdate-server/internal/models"
)

// Vote weights. No counts for nothing.
const (
	YesWeight   = 2
	MaybeWeight = 1
)

// Score counts the votes for every date of the aggregate, in aggregate order
func Score(agg *models.TripAggregate) []models.DateSummary {
	byDate := make(map[string]*models.DateSummary, len(agg.Dates))
	summaries := make([]models.DateSummary, len(agg.Dates))
	for i, d := range agg.Dates {
		summaries[i].Date = d
		byDate[d.ID] = &summaries[i]
	}

	for _, entry := range agg.Availability {
		s, ok := byDate[entry.TripDateID]
		if !ok {
			continue
		}
		switch entry.Status {
		case models.StatusYes:
			s.Yes++
		case models.StatusMaybe:
			s.Maybe++
		default:
			s.No++
		}
	}

	for i := range summaries {
		summaries[i].Score = YesWeight*summaries[i].Yes + MaybeWeight*summaries[i].Maybe
	}
	return summaries
}

// MaxScore returns the highest score, or 0 for no summaries
func MaxScore(summaries []models.DateSummary) int {
	max := 0
	for _, s := range summaries {
		if s.Score > max {
			max = s.Score
		}
	}
	return max
}

// BestDates returns every date reaching the maximum score. Ties are kept.
// A maximum of 0 means nobody can make any date, so nothing is returned.
func BestDates(summaries []models.DateSummary) []models.TripDate {
	best := []models.TripDate{}
	max := MaxScore(summaries)
	if max == 0 {
		return best
	}
	for _, s := range summaries {
		if s.Score == max {
			best = append(best, s.Date)
		}
	}
	return best
}

// Summarize scores the aggregate and flags the best dates
func Summarize(agg *models.TripAggregate) *models.TripResults {
	summaries := Score(agg)
	max := MaxScore(summaries)
	for i := range summaries {
		summaries[i].IsBest = max > 0 && summaries[i].Score == max
	}

	return &models.TripResults{
		TripID:    agg.Trip.ID,
		Summaries: summaries,
		MaxScore:  max,
		Best:      BestDates(summaries),
	}
}
