package models

// Position represents a WGS84 coordinate
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the position is inside the WGS84 coordinate ranges
func (p Position) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Measurement represents one GPS fix for one entity at one instant
type Measurement struct {
	Time     int64    `json:"time"` // Unix timestamp in seconds
	Position Position `json:"position"`
}

// Trajectory represents the time-ordered fixes of one moving entity
type Trajectory struct {
	ID           int32         `json:"id"`
	Measurements []Measurement `json:"measurements"`
}

// Equal reports structural equality: same id, same length, pairwise-equal measurements
func (t Trajectory) Equal(other Trajectory) bool {
	if t.ID != other.ID || len(t.Measurements) != len(other.Measurements) {
		return false
	}
	for i, m := range t.Measurements {
		if m != other.Measurements[i] {
			return false
		}
	}
	return true
}

// TrajectoryFilter represents query parameters for fetching a trajectory
type TrajectoryFilter struct {
	Date   string  `form:"date"` // yyyy-MM-dd, UTC day
	MinLat float64 `form:"minLat"`
	MinLon float64 `form:"minLon"`
	MaxLat float64 `form:"maxLat"`
	MaxLon float64 `form:"maxLon"`
	HasBox bool    `form:"-"`
}

// TrajectorySummary is a list entry for the trajectories index endpoint
type TrajectorySummary struct {
	ID           int32 `json:"id"`
	Measurements int64 `json:"measurements"`
	FirstTime    int64 `json:"firstTime"`
	LastTime     int64 `json:"lastTime"`
	Matched      bool  `json:"matched"`
}
