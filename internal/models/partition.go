package models

// SpatialPartition represents one grid cell of the spatial discretization.
// Two positions map to the same partition iff they fall in the same
// half-open cell [CellX*delta, (CellX+1)*delta) x [CellY*delta, (CellY+1)*delta).
type SpatialPartition struct {
	CellX int64 `json:"cellX"` // floor(longitude / delta)
	CellY int64 `json:"cellY"` // floor(latitude / delta)
}

// MeasurementPartition is the discretized analogue of Measurement.
// Time is the bucket start time in seconds, not a bucket index, so it stays
// directly comparable across temporal resolutions.
type MeasurementPartition struct {
	Time     int64            `json:"time"`
	Location SpatialPartition `json:"location"`
}

// TrajectoryPartition is the discretized analogue of Trajectory, sorted by time
type TrajectoryPartition struct {
	ID         int32                  `json:"id"`
	Partitions []MeasurementPartition `json:"partitions"`
}

// Transition represents one observed move between grid cells, tagged with
// how long the entity dwelled in From before moving to To
type Transition struct {
	From  SpatialPartition `json:"from"`
	To    SpatialPartition `json:"to"`
	Dwell int64            `json:"dwell"` // seconds
}

// TransitionKey identifies a (from, to) cell pair for grouping
type TransitionKey struct {
	From SpatialPartition
	To   SpatialPartition
}

// TransitionStatistic is the population-level aggregate for one cell pair
type TransitionStatistic struct {
	From      SpatialPartition `json:"from"`
	To        SpatialPartition `json:"to"`
	Count     int64            `json:"count"`
	MeanDwell float64          `json:"meanDwell"` // seconds
}

// PartitionIndexEntry maps one observed grid cell to its dense integer id
type PartitionIndexEntry struct {
	Index int64            `json:"index"`
	Cell  SpatialPartition `json:"cell"`
}

// TransitionStatFilter represents filter parameters for querying transition statistics
type TransitionStatFilter struct {
	MinCount int64 `form:"minCount"`
	Page     int   `form:"page"`
	PageSize int   `form:"pageSize"`
}

// Normalize applies paging defaults and caps the page size. Callers see the
// effective values, so the response envelope matches what the query used.
func (f *TransitionStatFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 100
	}
	if f.PageSize > 1000 {
		f.PageSize = 1000
	}
}
