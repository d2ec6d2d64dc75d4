package mapmatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jengzang/cotraj-backend-go/internal/models"
)

// Matcher snaps a sequence of raw fixes onto a road network.
// Implementations return the matched path or an error; callers that need the
// swallow-into-empty behavior go through trajectory.MapMatch.
type Matcher interface {
	Match(ctx context.Context, measurements []models.Measurement) ([]models.Position, error)
}

// Client is an HTTP client for an external map-matching service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a map-matching client for the given base URL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type matchRequest struct {
	Points []matchPoint `json:"points"`
}

type matchPoint struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Time int64   `json:"time"`
}

type matchResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Matched []matchPoint `json:"matched"`
}

// Match posts the fixes to the matcher's /match endpoint and returns the
// matched path. Any transport, status, or decode failure is returned as an
// error; "no match found" (empty matched path with a non-zero code) is an
// error too.
func (c *Client) Match(ctx context.Context, measurements []models.Measurement) ([]models.Position, error) {
	req := matchRequest{Points: make([]matchPoint, 0, len(measurements))}
	for _, m := range measurements {
		req.Points = append(req.Points, matchPoint{
			Lat:  m.Position.Lat,
			Lon:  m.Position.Lon,
			Time: m.Time,
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode match request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/match", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build match request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("map matcher unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("map matcher returned status %d: %s", resp.StatusCode, string(data))
	}

	var matched matchResponse
	if err := json.NewDecoder(resp.Body).Decode(&matched); err != nil {
		return nil, fmt.Errorf("failed to decode match response: %w", err)
	}

	if matched.Code != 0 {
		return nil, fmt.Errorf("map matcher rejected trajectory: %s", matched.Message)
	}
	if len(matched.Matched) == 0 {
		return nil, fmt.Errorf("map matcher found no match")
	}

	positions := make([]models.Position, 0, len(matched.Matched))
	for _, p := range matched.Matched {
		positions = append(positions, models.Position{Lat: p.Lat, Lon: p.Lon})
	}

	return positions, nil
}
