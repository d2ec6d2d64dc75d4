package service

import (
	"fmt"

	"github.com/jengzang/cotraj-backend-go/internal/models"
	"github.com/jengzang/cotraj-backend-go/internal/repository"
	"github.com/jengzang/cotraj-backend-go/internal/trajectory"
)

// TrackService handles business logic for trajectories
type TrackService struct {
	repo *repository.TrackRepository
}

// NewTrackService creates a new track service
func NewTrackService(repo *repository.TrackRepository) *TrackService {
	return &TrackService{repo: repo}
}

// ListTrajectories returns summaries of all stored trajectories
func (s *TrackService) ListTrajectories() ([]models.TrajectorySummary, error) {
	return s.repo.ListTrajectories()
}

// UploadTrajectory validates, normalizes, and stores one trajectory
func (s *TrackService) UploadTrajectory(t models.Trajectory) (models.Trajectory, error) {
	if len(t.Measurements) == 0 {
		return models.Trajectory{}, fmt.Errorf("trajectory %d has no measurements", t.ID)
	}
	for _, m := range t.Measurements {
		if !m.Position.Valid() {
			return models.Trajectory{}, fmt.Errorf("trajectory %d has out-of-range position (%f, %f)", t.ID, m.Position.Lat, m.Position.Lon)
		}
	}

	normalized := trajectory.Normalize(t)
	if err := s.repo.SaveTrajectory(normalized, false); err != nil {
		return models.Trajectory{}, err
	}

	return normalized, nil
}

// GetTrajectory fetches one trajectory, optionally filtered by UTC calendar
// day and/or bounding box
func (s *TrackService) GetTrajectory(id int32, matched bool, filter models.TrajectoryFilter) (models.Trajectory, error) {
	t, err := s.repo.GetTrajectory(id, matched)
	if err != nil {
		return models.Trajectory{}, err
	}

	if filter.Date != "" {
		t, err = trajectory.FilterDate(t, filter.Date)
		if err != nil {
			return models.Trajectory{}, err
		}
	}

	if filter.HasBox {
		t = trajectory.FilterBox(t,
			models.Position{Lat: filter.MinLat, Lon: filter.MinLon},
			models.Position{Lat: filter.MaxLat, Lon: filter.MaxLon},
		)
	}

	return t, nil
}

// SplitTrajectoryByDate fetches one trajectory and splits it into per-day slices
func (s *TrackService) SplitTrajectoryByDate(id int32) ([]trajectory.DayTrajectory, error) {
	t, err := s.repo.GetTrajectory(id, false)
	if err != nil {
		return nil, err
	}
	return trajectory.SplitByDate(t), nil
}
