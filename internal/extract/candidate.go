package extract

// CandidatePost mirrors one recent_posts entry as the model returned it.
// Numeric fields stay loosely typed: the model is asked for integers but
// routinely hands back strings like "2k" or "1,250".
type CandidatePost struct {
	PostID       any    `json:"post_id"`
	URL          string `json:"url"`
	MediaType    string `json:"media_type"`
	Likes        any    `json:"likes"`
	Comments     any    `json:"comments"`
	PostDate     string `json:"post_date"`
	Views        any    `json:"views"`
	Reach        any    `json:"reach"`
	Impressions  any    `json:"impressions"`
	Shares       any    `json:"shares"`
	Completeness any    `json:"completeness_score"`
}

// Candidate is the raw, unvalidated shape of a model reply. The normalizer
// turns it into a domain.MetricsRecord.
type Candidate struct {
	HasMetrics     bool            `json:"has_metrics"`
	InfluencerName string          `json:"influencer_name"`
	QualityScore   any             `json:"data_quality_score"`
	Confidence     any             `json:"extraction_confidence"`
	RecentPosts    []CandidatePost `json:"recent_posts"`
	Followers      any             `json:"followers_count"`
	Following      any             `json:"following_count"`
	PostsCount     any             `json:"posts_count"`
	AvgLikes       any             `json:"avg_likes_per_post"`
	AvgComments    any             `json:"avg_comments_per_post"`
	EngagementRate any             `json:"engagement_rate"`
	MissingFields  []string        `json:"missing_data_points"`
	Reliability    string          `json:"data_source_reliability"`
}
