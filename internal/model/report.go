package model

import (
	"fmt"
	"strings"
)

// NewsItem is a recent news item about the company.
type NewsItem struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Date    string `json:"date"`
	Source  string `json:"source"`
	URL     string `json:"url"`
}

// DecisionMaker is a key decision maker at the company.
type DecisionMaker struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Background  string `json:"background"`
	LinkedInURL string `json:"linkedin_url"`
}

// ResearchReport is the structured output of the deep-research stage.
// List fields are never nil in a decoded report; consumers may range over
// them without a presence check.
type ResearchReport struct {
	CompanyOverview string `json:"company_overview"`
	FoundedYear     int    `json:"founded_year,omitempty"`
	Headquarters    string `json:"headquarters"`
	EmployeeCount   string `json:"employee_count"`
	AnnualRevenue   string `json:"annual_revenue"`
	Website         string `json:"website"`

	RecentNews     []NewsItem      `json:"recent_news"`
	DecisionMakers []DecisionMaker `json:"decision_makers"`

	PainPoints    []string `json:"pain_points"`
	Opportunities []string `json:"opportunities"`

	DigitalMaturity string `json:"digital_maturity"`
	AIFootprint     string `json:"ai_footprint"`
	AIAdoptionStage string `json:"ai_adoption_stage"`

	StrategicGoals []string `json:"strategic_goals"`
	KeyInitiatives []string `json:"key_initiatives"`
	TalkingPoints  []string `json:"talking_points"`
}

// FormatText renders the report as a plain-markdown summary for CLI output
// and for the job's result column.
func (r ResearchReport) FormatText() string {
	var sections []string

	if r.CompanyOverview != "" {
		sections = append(sections, "## Company Overview\n"+r.CompanyOverview)
	}

	var details []string
	if r.FoundedYear != 0 {
		details = append(details, fmt.Sprintf("- Founded: %d", r.FoundedYear))
	}
	if r.Headquarters != "" {
		details = append(details, "- Headquarters: "+r.Headquarters)
	}
	if r.EmployeeCount != "" {
		details = append(details, "- Employees: "+r.EmployeeCount)
	}
	if r.AnnualRevenue != "" {
		details = append(details, "- Revenue: "+r.AnnualRevenue)
	}
	if r.Website != "" {
		details = append(details, "- Website: "+r.Website)
	}
	if len(details) > 0 {
		sections = append(sections, "## Company Details\n"+strings.Join(details, "\n"))
	}

	if len(r.RecentNews) > 0 {
		items := make([]string, 0, len(r.RecentNews))
		for _, n := range r.RecentNews {
			items = append(items, fmt.Sprintf("- **%s**: %s", n.Title, n.Summary))
		}
		sections = append(sections, "## Recent News\n"+strings.Join(items, "\n"))
	}

	if len(r.DecisionMakers) > 0 {
		items := make([]string, 0, len(r.DecisionMakers))
		for _, dm := range r.DecisionMakers {
			items = append(items, fmt.Sprintf("- **%s** - %s: %s", dm.Name, dm.Title, dm.Background))
		}
		sections = append(sections, "## Key Decision Makers\n"+strings.Join(items, "\n"))
	}

	if len(r.PainPoints) > 0 {
		sections = append(sections, "## Pain Points\n"+bulleted(r.PainPoints))
	}
	if len(r.Opportunities) > 0 {
		sections = append(sections, "## Opportunities\n"+bulleted(r.Opportunities))
	}

	if r.DigitalMaturity != "" || r.AIFootprint != "" {
		var b strings.Builder
		b.WriteString("## Digital & AI Assessment\n")
		if r.DigitalMaturity != "" {
			fmt.Fprintf(&b, "- Digital Maturity: %s\n", r.DigitalMaturity)
		}
		if r.AIAdoptionStage != "" {
			fmt.Fprintf(&b, "- AI Adoption Stage: %s\n", r.AIAdoptionStage)
		}
		if r.AIFootprint != "" {
			b.WriteString("- AI Footprint: " + r.AIFootprint)
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}

	if len(r.StrategicGoals) > 0 {
		sections = append(sections, "## Strategic Goals\n"+bulleted(r.StrategicGoals))
	}
	if len(r.KeyInitiatives) > 0 {
		sections = append(sections, "## Key Initiatives\n"+bulleted(r.KeyInitiatives))
	}
	if len(r.TalkingPoints) > 0 {
		sections = append(sections, "## Recommended Talking Points\n"+bulleted(r.TalkingPoints))
	}

	return strings.Join(sections, "\n\n")
}

func bulleted(items []string) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, "- "+it)
	}
	return strings.Join(lines, "\n")
}
