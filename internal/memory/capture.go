// Package memory captures research findings into the long-term knowledge
// base so later engagements can retrieve them by similarity search.
package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/chroma"
)

// Collection names in the vector store.
const (
	collectionProfiles = "client_profiles"
	collectionEntries  = "memory_entries"
)

const (
	maxProfilePainPoints = 3
	maxTalkingPoints     = 3
	maxOpportunities     = 2
	maxProfileSummaryLen = 500
)

// CaptureResult reports what a capture call managed to store. Errors holds
// human-readable causes for anything that was skipped; it is never fatal.
type CaptureResult struct {
	ProfileCaptured  bool     `json:"profile_captured"`
	InsightsCaptured int      `json:"insights_captured"`
	Errors           []string `json:"errors,omitempty"`
}

// Capturer stores findings from a completed research job.
type Capturer interface {
	FromResearch(ctx context.Context, job *model.ResearchJob, report *model.ResearchReport) CaptureResult
}

// Capture writes research findings into a Chroma vector store.
type Capture struct {
	chroma chroma.Client
}

// NewCapture creates a Capture backed by the given vector store client.
func NewCapture(client chroma.Client) *Capture {
	return &Capture{chroma: client}
}

// FromResearch captures a client profile document and a handful of insight
// documents from a completed job. Every failure is collected and logged;
// FromResearch never propagates an error to the caller.
func (c *Capture) FromResearch(ctx context.Context, job *model.ResearchJob, report *model.ResearchReport) CaptureResult {
	log := zap.L().With(zap.String("job_id", job.ID), zap.String("client", job.ClientName))

	var result CaptureResult
	fail := func(action string, err error) {
		log.Warn("memory: capture step failed", zap.String("action", action), zap.Error(err))
		result.Errors = append(result.Errors, action+": "+err.Error())
	}

	summary := profileSummary(job, report)
	if summary != "" {
		coll, err := c.chroma.GetOrCreateCollection(ctx, collectionProfiles)
		if err != nil {
			fail("get profiles collection", err)
		} else if err := c.chroma.Add(ctx, coll.ID, chroma.AddRequest{
			IDs:       []string{"profile_" + job.ID},
			Documents: []string{summary},
			Metadatas: []map[string]any{{
				"client_name": job.ClientName,
				"industry":    job.Vertical,
				"job_id":      job.ID,
			}},
		}); err != nil {
			fail("add client profile", err)
		} else {
			result.ProfileCaptured = true
		}
	}

	if report == nil {
		return result
	}

	coll, err := c.chroma.GetOrCreateCollection(ctx, collectionEntries)
	if err != nil {
		fail("get entries collection", err)
		return result
	}

	addEntry := func(entryType, title, content string) {
		err := c.chroma.Add(ctx, coll.ID, chroma.AddRequest{
			IDs:       []string{"entry_" + uuid.NewString()},
			Documents: []string{content},
			Metadatas: []map[string]any{{
				"entry_type":  entryType,
				"title":       title,
				"client_name": job.ClientName,
				"industry":    job.Vertical,
				"source_id":   job.ID,
			}},
		})
		if err != nil {
			fail("add "+entryType, err)
			return
		}
		result.InsightsCaptured++
	}

	for _, point := range head(report.TalkingPoints, maxTalkingPoints) {
		addEntry("best_practice", "Talking point for "+job.ClientName, point)
	}
	for _, opp := range head(report.Opportunities, maxOpportunities) {
		addEntry("research_insight", "Opportunity at "+job.ClientName, opp)
	}

	return result
}

// profileSummary builds the searchable profile document for a job. Falls
// back to the job's rendered result text when no structured report exists.
func profileSummary(job *model.ResearchJob, report *model.ResearchReport) string {
	var parts []string
	if report != nil {
		if report.CompanyOverview != "" {
			parts = append(parts, report.CompanyOverview)
		}
		if report.AIFootprint != "" {
			parts = append(parts, "AI Footprint: "+report.AIFootprint)
		}
		if len(report.PainPoints) > 0 {
			parts = append(parts, "Pain Points: "+strings.Join(head(report.PainPoints, maxProfilePainPoints), ", "))
		}
	}
	summary := strings.Join(parts, " ")
	if summary == "" {
		summary = job.Result
		if len(summary) > maxProfileSummaryLen {
			summary = summary[:maxProfileSummaryLen]
		}
	}
	return summary
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
