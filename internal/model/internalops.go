package model

// EmployeeSentiment summarizes employee review signals.
type EmployeeSentiment struct {
	OverallRating   float64  `json:"overall_rating"`
	WorkLifeBalance float64  `json:"work_life_balance"`
	Compensation    float64  `json:"compensation"`
	Culture         float64  `json:"culture"`
	Management      float64  `json:"management"`
	RecommendPct    int      `json:"recommend_pct"`
	PositiveThemes  []string `json:"positive_themes"`
	NegativeThemes  []string `json:"negative_themes"`
	Trend           string   `json:"trend"` // improving, declining, stable
}

// CompanyPost is a recent public company post or announcement.
type CompanyPost struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Date    string `json:"date"`
}

// LinkedInPresence summarizes the company's LinkedIn footprint.
type LinkedInPresence struct {
	FollowerCount   int           `json:"follower_count"`
	EngagementLevel string        `json:"engagement_level"` // low, medium, high
	RecentPosts     []CompanyPost `json:"recent_posts"`
	EmployeeTrend   string        `json:"employee_trend"` // growing, shrinking, stable
	NotableChanges  []string      `json:"notable_changes"`
}

// SocialMediaMention is one public discussion signal.
type SocialMediaMention struct {
	Platform  string `json:"platform"`
	Summary   string `json:"summary"`
	Sentiment string `json:"sentiment"` // positive, negative, neutral, mixed
	Topic     string `json:"topic"`
}

// JobPostings summarizes the company's open-position signals.
type JobPostings struct {
	TotalOpenings         int            `json:"total_openings"`
	DepartmentsHiring     map[string]int `json:"departments_hiring"`
	SkillsSought          []string       `json:"skills_sought"`
	SeniorityDistribution map[string]int `json:"seniority_distribution"`
	UrgencySignals        []string       `json:"urgency_signals"`
	Insights              string         `json:"insights"`
}

// Headline is one news headline with its sentiment.
type Headline struct {
	Title     string `json:"title"`
	Source    string `json:"source"`
	Date      string `json:"date"`
	Sentiment string `json:"sentiment"`
}

// NewsSentiment summarizes recent news coverage.
type NewsSentiment struct {
	OverallSentiment string     `json:"overall_sentiment"` // positive, negative, neutral, mixed
	CoverageVolume   string     `json:"coverage_volume"`   // low, medium, high
	Topics           []string   `json:"topics"`
	Headlines        []Headline `json:"headlines"`
}

// InternalOpsIntel is the structured output of the internal-ops stage.
// Nested blocks are always present as zero-value records, never nil.
type InternalOpsIntel struct {
	EmployeeSentiment   EmployeeSentiment    `json:"employee_sentiment"`
	LinkedInPresence    LinkedInPresence     `json:"linkedin_presence"`
	SocialMediaMentions []SocialMediaMention `json:"social_media_mentions"`
	JobPostings         JobPostings          `json:"job_postings"`
	NewsSentiment       NewsSentiment        `json:"news_sentiment"`
	KeyInsights         []string             `json:"key_insights"`
	ConfidenceScore     float64              `json:"confidence_score"`
	DataFreshness       string               `json:"data_freshness"`
	AnalysisNotes       string               `json:"analysis_notes"`
}
