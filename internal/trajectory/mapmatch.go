package trajectory

import (
	"context"
	"log"

	"github.com/jengzang/cotraj-backend-go/internal/mapmatch"
	"github.com/jengzang/cotraj-backend-go/internal/models"
)

// MapMatch snaps a trajectory onto the road network through the external
// matcher. On success the result has one measurement per matched position
// with synthetic times 0, 1, 2, ... — the matcher cannot recover the original
// sampling times, and nothing beyond this fixed convention is fabricated.
//
// This is a total function: any matcher failure (no match found, matcher
// down, bad response) degrades to a trajectory with the same id and no
// measurements. The failure reason is logged but never returned, so one bad
// trajectory cannot abort a population-level job.
func MapMatch(ctx context.Context, matcher mapmatch.Matcher, t models.Trajectory) models.Trajectory {
	matched, err := matcher.Match(ctx, t.Measurements)
	if err != nil {
		log.Printf("[MapMatch] trajectory %d degraded to empty: %v", t.ID, err)
		return models.Trajectory{ID: t.ID, Measurements: []models.Measurement{}}
	}

	measurements := make([]models.Measurement, 0, len(matched))
	for i, p := range matched {
		measurements = append(measurements, models.Measurement{
			Time:     int64(i),
			Position: p,
		})
	}

	return models.Trajectory{ID: t.ID, Measurements: measurements}
}
