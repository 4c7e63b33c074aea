// internal/models/brief.go
package models

// Platform identifies an advertising platform supported by the engine.
type Platform string

const (
	PlatformMeta      Platform = "meta"
	PlatformGoogleAds Platform = "google_ads"
	PlatformTikTok    Platform = "tiktok"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformYouTube   Platform = "youtube"
	PlatformX         Platform = "x_twitter"
)

// FunnelStage is the campaign objective tier; it changes which KPIs are
// prioritized and whether conversion economics (break-even ROAS) apply.
type FunnelStage string

const (
	StageAwareness     FunnelStage = "awareness"
	StageConsideration FunnelStage = "consideration"
	StageConversion    FunnelStage = "conversion"
)

// ConversionOriented reports whether revenue economics are meaningful for
// this stage.
func (s FunnelStage) ConversionOriented() bool {
	return s == StageConversion
}

type Goal string

const (
	GoalBrandAwareness Goal = "brand_awareness"
	GoalTraffic        Goal = "traffic"
	GoalLeads          Goal = "leads"
	GoalConversions    Goal = "conversions"
	GoalEngagement     Goal = "engagement"
)

type DurationBucket string

const (
	DurationOneWeek     DurationBucket = "1_week"
	DurationTwoWeeks    DurationBucket = "2_weeks"
	DurationOneMonth    DurationBucket = "1_month"
	DurationThreeMonths DurationBucket = "3_months"
	DurationSixMonths   DurationBucket = "6_months"
	DurationOngoing     DurationBucket = "ongoing"
)

type CompetitionLevel string

const (
	CompetitionLow    CompetitionLevel = "low"
	CompetitionMedium CompetitionLevel = "medium"
	CompetitionHigh   CompetitionLevel = "high"
)

type CreativeType string

const (
	CreativeVideo    CreativeType = "video"
	CreativeImage    CreativeType = "image"
	CreativeCarousel CreativeType = "carousel"
	CreativeUGC      CreativeType = "ugc"
	CreativeText     CreativeType = "text"
)

// TargetAudience describes who the campaign is aimed at. Every selected
// attribute activates the matching modifier set during projection.
type TargetAudience struct {
	AgeRanges          []string `json:"ageRanges"`
	Genders            []string `json:"genders"`
	Locations          []string `json:"locations"`
	Interests          []string `json:"interests"`
	Behaviors          []string `json:"behaviors"`
	Devices            []string `json:"devices"`
	LookalikePrecision string   `json:"lookalikePrecision,omitempty"` // narrow, balanced, broad
}

// CampaignBrief is the business input to a forecast. It is treated as
// immutable by the engine.
type CampaignBrief struct {
	Industry        string           `json:"industry"`
	SubIndustry     string           `json:"subIndustry,omitempty"`
	TotalBudget     float64          `json:"totalBudget"`
	Duration        DurationBucket   `json:"duration"`
	FunnelStage     FunnelStage      `json:"funnelStage"`
	PrimaryGoal     Goal             `json:"primaryGoal"`
	SecondaryGoals  []Goal           `json:"secondaryGoals,omitempty"`
	Platforms       []Platform       `json:"platforms"`
	Audience        TargetAudience   `json:"audience"`
	CreativeType    CreativeType     `json:"creativeType"`
	Competition     CompetitionLevel `json:"competition"`
	Seasons         []string         `json:"seasons,omitempty"`
	ProfitMarginPct float64          `json:"profitMarginPct"`
	AvgOrderValue   float64          `json:"avgOrderValue,omitempty"` // 0 means use industry default
}
