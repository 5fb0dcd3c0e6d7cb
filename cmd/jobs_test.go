package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/prospect-cli/internal/model"
)

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "12345678", truncateID("12345678-abcd-efgh"))
	assert.Equal(t, "short", truncateID("short"))
}

func TestFormatJobsList(t *testing.T) {
	jobs := []model.ResearchJob{
		{
			ID:         "aaaaaaaa-1111-2222-3333-444444444444",
			ClientName: "Acme Manufacturing",
			Status:     model.JobStatusCompleted,
			Vertical:   "manufacturing",
			CreatedAt:  time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		},
		{
			ID:         "bbbbbbbb-1111-2222-3333-444444444444",
			ClientName: "A Client With A Very Long Company Name LLC",
			Status:     model.JobStatusFailed,
			CreatedAt:  time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	formatJobsList(&buf, jobs)
	out := buf.String()

	assert.Contains(t, out, "aaaaaaaa")
	assert.Contains(t, out, "Acme Manufacturing")
	assert.Contains(t, out, "manufacturing")
	assert.Contains(t, out, "2026-03-14 09:30")
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, "Very Long Company Name LLC")
}
