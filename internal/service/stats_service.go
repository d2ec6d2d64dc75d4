package service

import (
	"github.com/jengzang/cotraj-backend-go/internal/analysis/chain"
	"github.com/jengzang/cotraj-backend-go/internal/models"
	"github.com/jengzang/cotraj-backend-go/internal/repository"
	"github.com/jengzang/cotraj-backend-go/internal/trajectory"
)

// StatsService handles business logic for pattern extraction and
// population-level statistics
type StatsService struct {
	tracks *repository.TrackRepository
	stats  *repository.StatsRepository
}

// NewStatsService creates a new stats service
func NewStatsService(tracks *repository.TrackRepository, stats *repository.StatsRepository) *StatsService {
	return &StatsService{tracks: tracks, stats: stats}
}

// JumpchainResult bundles the per-trajectory extraction outputs at one resolution
type JumpchainResult struct {
	ID          int32                     `json:"id"`
	Jumpchain   []models.SpatialPartition `json:"jumpchain"`
	DwellTimes  []int64                   `json:"dwellTimes"`
	Transitions []models.Transition       `json:"transitions"`
}

// TrajectoryJumpchain partitions one stored trajectory at the given
// resolutions and extracts its jump chain, dwell times, and transitions
func (s *StatsService) TrajectoryJumpchain(id int32, tau int64, delta float64) (*JumpchainResult, error) {
	t, err := s.tracks.GetTrajectory(id, false)
	if err != nil {
		return nil, err
	}

	tp, err := trajectory.Partition(trajectory.Normalize(t), tau, delta)
	if err != nil {
		return nil, err
	}

	return &JumpchainResult{
		ID:          id,
		Jumpchain:   chain.Jumpchain(chain.Locations(tp)),
		DwellTimes:  chain.JumpchainTimes(tp.Partitions),
		Transitions: chain.Transitions(tp.Partitions),
	}, nil
}

// GetTransitionStats returns the persisted population transition statistics.
// The filter is normalized in place so callers can echo the effective paging.
func (s *StatsService) GetTransitionStats(filter *models.TransitionStatFilter) ([]models.TransitionStatistic, int64, error) {
	filter.Normalize()
	return s.stats.GetTransitionStats(*filter)
}

// GetPartitionIndex returns the persisted global partition index
func (s *StatsService) GetPartitionIndex() ([]models.PartitionIndexEntry, error) {
	return s.stats.GetPartitionIndex()
}
