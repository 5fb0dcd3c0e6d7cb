package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

const internalOpsPrompt = `You are a business intelligence analyst specializing in organizational research. Your task is to analyze publicly available information about a company to gather internal operations intelligence.

Target Company: %s
Industry Vertical: %s
Company Website: %s
Company Overview: %s

Research and analyze the following aspects based on publicly available information:

1. EMPLOYEE SENTIMENT (from review sites like Glassdoor, Indeed, Blind)
   - Overall rating and category ratings (work-life balance, compensation, culture, management)
   - Common positive and negative themes from employee reviews
   - Sentiment trend (improving, declining, stable)

2. LINKEDIN PRESENCE
   - Estimated follower count and engagement level
   - Recent company announcements or posts
   - Employee count trends
   - Notable leadership changes or hires

3. SOCIAL MEDIA PRESENCE (Reddit, Twitter/X, Facebook discussions)
   - What are people saying about working at or with this company?
   - Key discussion topics and sentiment

4. JOB POSTINGS ANALYSIS
   - Approximate number of open positions
   - Which departments are hiring most
   - Key skills being sought
   - Seniority levels (entry, mid, senior, executive)
   - Urgency signals (signing bonuses, immediate start, etc.)

5. NEWS SENTIMENT
   - Recent news coverage sentiment
   - Key topics being covered
   - Notable headlines

6. KEY INSIGHTS for sales teams
   - What does this intelligence tell us about the company's current state?
   - What opportunities or challenges does this reveal?

Respond with valid JSON matching this exact structure:
{
    "employee_sentiment": {
        "overall_rating": 3.8,
        "work_life_balance": 3.5,
        "compensation": 3.7,
        "culture": 3.6,
        "management": 3.4,
        "recommend_pct": 68,
        "positive_themes": ["Good benefits", "Smart colleagues", "Interesting work"],
        "negative_themes": ["Long hours", "Bureaucracy", "Slow promotions"],
        "trend": "stable"
    },
    "linkedin_presence": {
        "follower_count": 50000,
        "engagement_level": "medium",
        "recent_posts": [
            {"title": "Post title", "summary": "Brief summary", "date": "2024-01"}
        ],
        "employee_trend": "growing",
        "notable_changes": ["New CTO hired", "Expanded engineering team"]
    },
    "social_media_mentions": [
        {
            "platform": "reddit",
            "summary": "Discussion summary on r/tech",
            "sentiment": "mixed",
            "topic": "Work culture"
        }
    ],
    "job_postings": {
        "total_openings": 45,
        "departments_hiring": {
            "Engineering": 20,
            "Sales": 10
        },
        "skills_sought": ["Python", "Cloud", "AI/ML", "Leadership"],
        "seniority_distribution": {
            "Entry": 10,
            "Mid": 20,
            "Senior": 12,
            "Executive": 3
        },
        "urgency_signals": ["Competitive salary", "Sign-on bonus for engineering roles"],
        "insights": "Heavy focus on technical hiring suggests major development initiative"
    },
    "news_sentiment": {
        "overall_sentiment": "positive",
        "coverage_volume": "medium",
        "topics": ["Product launch", "Funding round", "Industry recognition"],
        "headlines": [
            {"title": "Company Announces New Product", "source": "TechCrunch", "date": "2024-01", "sentiment": "positive"}
        ]
    },
    "key_insights": [
        "Heavy engineering hiring suggests major product development underway",
        "Employee reviews indicate culture challenges that may create opportunity for solutions"
    ],
    "confidence_score": 0.75,
    "data_freshness": "last_30_days",
    "analysis_notes": "Analysis based on publicly available information from LinkedIn, job boards, and news sources."
}

IMPORTANT:
- Base analysis on what would be publicly available - do not fabricate specific data
- Be realistic with estimates based on company size and industry
- Rate scales: 1.0-5.0 for sentiment ratings, 0-100 for percentages
- confidence_score: 0.0-1.0 based on information availability
- data_freshness options: "last_7_days", "last_30_days", "last_90_days", "older"
- If information is unavailable for a section, use reasonable defaults
- Respond ONLY with valid JSON`

// researchInternalOps gathers public internal-state signals (employee
// sentiment, hiring, news coverage) for the target company. Independent of
// analyzeGaps over the same inputs; degrades to a nil payload on failure.
func (p *Pipeline) researchInternalOps(ctx context.Context, state model.WorkflowState) model.WorkflowState {
	if state.Failed() {
		return state
	}
	log := zap.L().With(zap.String("client", state.ClientName))

	website, overview := "", ""
	if state.Report != nil {
		website = state.Report.Website
		overview = state.Report.CompanyOverview
	}

	prompt := fmt.Sprintf(internalOpsPrompt, state.ClientName, state.Vertical, website, overview)
	raw, err := p.generate(ctx, "internal_ops", prompt)
	if err != nil {
		log.Warn("pipeline: internal ops research failed", zap.Error(err))
		state.InternalOps = nil
		return state
	}

	ops, err := decodeInternalOps(raw)
	if err != nil {
		log.Warn("pipeline: internal ops response was not valid JSON", zap.Error(err))
		state.InternalOps = nil
		return state
	}

	state.InternalOps = ops
	return state
}
