package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/jengzang/cotraj-backend-go/internal/config"
	"github.com/jengzang/cotraj-backend-go/internal/database"
	"github.com/jengzang/cotraj-backend-go/internal/models"
	"github.com/jengzang/cotraj-backend-go/internal/repository"
	"github.com/jengzang/cotraj-backend-go/internal/service"
)

type transitionStatsEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Data       []models.TransitionStatistic `json:"data"`
		Total      int64                        `json:"total"`
		Page       int                          `json:"page"`
		PageSize   int                          `json:"pageSize"`
		TotalPages int                          `json:"totalPages"`
	} `json:"data"`
}

func setupStatsRouter(t *testing.T, rows int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))

	for i := 0; i < rows; i++ {
		_, err = db.Exec(`
			INSERT INTO transition_stats (task_id, from_cell_x, from_cell_y, to_cell_x, to_cell_y, count, mean_dwell)
			VALUES (1, ?, 0, ?, 0, ?, 30.0)
		`, i, i+1, rows-i)
		require.NoError(t, err)
	}

	statsService := service.NewStatsService(
		repository.NewTrackRepository(db),
		repository.NewStatsRepository(db),
	)
	h := NewStatsHandler(statsService, &config.Config{
		DefaultTimeResolution:    60,
		DefaultSpatialResolution: 0.001,
	})

	router := gin.New()
	router.GET("/stats/transitions", h.GetTransitionStats)
	return router
}

func getTransitionStats(t *testing.T, router *gin.Engine, query string) transitionStatsEnvelope {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stats/transitions"+query, nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope transitionStatsEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestGetTransitionStatsPaging(t *testing.T) {
	router := setupStatsRouter(t, 5)

	envelope := getTransitionStats(t, router, "?page=2&pageSize=2")
	assert.Equal(t, int64(5), envelope.Data.Total)
	assert.Equal(t, 2, envelope.Data.Page)
	assert.Equal(t, 2, envelope.Data.PageSize)
	assert.Equal(t, 3, envelope.Data.TotalPages)
	require.Len(t, envelope.Data.Data, 2)

	// Ordered by count descending, so page 2 holds counts 3 and 2
	assert.Equal(t, int64(3), envelope.Data.Data[0].Count)
	assert.Equal(t, int64(2), envelope.Data.Data[1].Count)
}

func TestGetTransitionStatsEchoesEffectivePageSize(t *testing.T) {
	router := setupStatsRouter(t, 3)

	// An oversized pageSize is capped; the envelope must report the cap the
	// query actually ran with, not the requested value.
	envelope := getTransitionStats(t, router, "?pageSize=5000")
	assert.Equal(t, int64(3), envelope.Data.Total)
	assert.Equal(t, 1, envelope.Data.Page)
	assert.Equal(t, 1000, envelope.Data.PageSize)
	assert.Equal(t, 1, envelope.Data.TotalPages)
	assert.Len(t, envelope.Data.Data, 3)
}

func TestGetTransitionStatsDefaults(t *testing.T) {
	router := setupStatsRouter(t, 2)

	envelope := getTransitionStats(t, router, "")
	assert.Equal(t, 1, envelope.Data.Page)
	assert.Equal(t, 100, envelope.Data.PageSize)
	assert.Equal(t, 1, envelope.Data.TotalPages)
	assert.Len(t, envelope.Data.Data, 2)
}

func TestGetTransitionStatsMinCountFilter(t *testing.T) {
	router := setupStatsRouter(t, 5)

	envelope := getTransitionStats(t, router, "?minCount=4")
	assert.Equal(t, int64(2), envelope.Data.Total)
	require.Len(t, envelope.Data.Data, 2)
	for _, s := range envelope.Data.Data {
		assert.GreaterOrEqual(t, s.Count, int64(4))
	}
}
