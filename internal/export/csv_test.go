package export_test

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/mtlprog/panchayat/internal/domain"
	"github.com/mtlprog/panchayat/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	created := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	resolved := created.Add(48 * time.Hour)

	issues := []*domain.Issue{
		{
			ID:        "PTH-2026-1234",
			Category:  domain.CategoryRoad,
			Title:     `Pothole, "deep"`,
			Location:  "Kochi, Edappally",
			Urgency:   domain.UrgencyHigh,
			Status:    domain.StatusResolved,
			CreatedAt: created,
			Contact:   &domain.Contact{Phone: "9999999999"},
			Images:    []string{"a", "b"},
			StatusHistory: []domain.StatusChange{
				{Status: domain.StatusSubmitted, Timestamp: created},
				{Status: domain.StatusResolved, Timestamp: resolved},
			},
		},
		{
			ID:            "PTH-2026-5678",
			Category:      domain.CategoryWater,
			Location:      "Thrissur",
			Urgency:       domain.UrgencyLow,
			Status:        domain.StatusSubmitted,
			IsAnonymous:   true,
			CreatedAt:     created,
			StatusHistory: []domain.StatusChange{{Status: domain.StatusSubmitted, Timestamp: created}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, issues))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "id", records[0][0])
	assert.Equal(t, []string{
		"PTH-2026-1234", "road", `Pothole, "deep"`, "Kochi, Edappally", "high", "Resolved",
		"2026-02-03T04:05:06Z", "2026-02-05T04:05:06Z", "false", "9999999999", "", "2",
	}, records[1])
	assert.Equal(t, "true", records[2][8])
	assert.Empty(t, records[2][9])
	assert.Equal(t, "0", records[2][11])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSV_WriterError(t *testing.T) {
	assert.Error(t, export.WriteCSV(failingWriter{}, nil))
}
