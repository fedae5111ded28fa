package domain

import "time"

// ScheduleItem is one planned deliverable inside a contract.
type ScheduleItem struct {
	Platform     string `json:"platform"`
	Date         string `json:"date"`
	ContentTheme string `json:"content_theme"`
	Impressions  *int64 `json:"impressions"`
	Views        *int64 `json:"views"`
	Likes        *int64 `json:"likes"`
	Comments     *int64 `json:"comments"`
	Shares       *int64 `json:"shares"`
}

// ContractFields is the structured output of contract parsing.
type ContractFields struct {
	AgencyName         string         `json:"agency_name"`
	AgencyAddress      string         `json:"agency_address"`
	ClientName         string         `json:"client_name"`
	ClientAddress      string         `json:"client_address"`
	ContractDate       string         `json:"contract_date"`
	TotalFee           *float64       `json:"total_fee"`
	Currency           string         `json:"currency"`
	PromotedService    string         `json:"promoted_service_product"`
	Platforms          []string       `json:"platforms"`
	Platform1          string         `json:"platform_1"`
	Platform1Number    *int64         `json:"platform_1_number"`
	Platform2          string         `json:"platform_2"`
	Platform2Number    *int64         `json:"platform_2_number"`
	Schedule           []ScheduleItem `json:"schedule"`
	PostDuration       *int64         `json:"post_duration"`
	PaymentDeadline    string         `json:"payment_deadline"`
	AgencySignDate     string         `json:"agency_sign_date"`
	InfluencerSignDate string         `json:"influencer_sign_date"`
}

// QueueStatus enumerates payment queue entry states.
type QueueStatus string

const (
	QueuePending   QueueStatus = "PENDING"
	QueueCompleted QueueStatus = "COMPLETED"
	QueueFailed    QueueStatus = "FAILED"
)

// EligibleContract is a contract the scanner decided is ready for payment.
type EligibleContract struct {
	ContractID     string
	Amount         float64
	Currency       string
	PostsCompleted int64
	PostsRequired  int64
}

// QueuedPayment is a pending entry in the payment queue.
type QueuedPayment struct {
	ContractID string
	Amount     float64
	Currency   string
	Status     QueueStatus
	CreatedAt  time.Time
}

// FileRef points at a contract document, either via a shared link or an
// inline base64 payload.
type FileRef struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	Content string `json:"content,omitempty"`
}

// MetricsSummary is the warehouse rollup shown to admins.
type MetricsSummary struct {
	TotalRecords      int64
	UniqueInfluencers int64
	LatestCollection  string
	AvgFollowers      float64
	AvgEngagement     float64
}

// StoredMetrics is a warehouse row surfaced by the recent-metrics lookup.
type StoredMetrics struct {
	SubjectID      string
	CollectedAt    time.Time
	Followers      *int64
	EngagementRate *float64
	PostCount      int64
}
