package domain

import "strings"

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MediaType is the closed set of post formats we track.
type MediaType string

const (
	MediaPhoto    MediaType = "photo"
	MediaVideo    MediaType = "video"
	MediaReel     MediaType = "reel"
	MediaCarousel MediaType = "carousel"
)

var mediaTypeAliases = map[string]MediaType{
	"image": MediaPhoto, "pic": MediaPhoto, "picture": MediaPhoto,
	"vid": MediaVideo, "clip": MediaVideo,
	"story": MediaReel, "stories": MediaReel,
	"slide": MediaCarousel, "slides": MediaCarousel, "swipe": MediaCarousel,
}

// NormalizeMediaType maps free-form model output onto the closed set,
// defaulting to photo.
func NormalizeMediaType(raw string) MediaType {
	switch t := MediaType(lower(raw)); t {
	case MediaPhoto, MediaVideo, MediaReel, MediaCarousel:
		return t
	}
	if t, ok := mediaTypeAliases[lower(raw)]; ok {
		return t
	}
	return MediaPhoto
}

// Reliability grades how trustworthy the source data looked.
type Reliability string

const (
	ReliabilityHigh   Reliability = "high"
	ReliabilityMedium Reliability = "medium"
	ReliabilityLow    Reliability = "low"
)

// NormalizeReliability maps free-form model output onto the closed set,
// defaulting to medium.
func NormalizeReliability(raw string) Reliability {
	switch r := Reliability(lower(raw)); r {
	case ReliabilityHigh, ReliabilityMedium, ReliabilityLow:
		return r
	}
	return ReliabilityMedium
}

// PostMetric is per-post performance data inside a MetricsRecord.
// Counter fields are nil when unknown, never zero-by-default.
type PostMetric struct {
	ID           string
	URL          string
	MediaType    MediaType
	Likes        *int64
	Comments     *int64
	Views        *int64
	Reach        *int64
	Impressions  *int64
	Shares       *int64
	Date         string // YYYY-MM-DD
	Completeness float64
}

// MetricsRecord is the canonical output of the extraction pipeline.
type MetricsRecord struct {
	HasMetrics     bool
	SubjectID      string
	Posts          []PostMetric
	Followers      *int64
	Following      *int64
	PostsCount     *int64
	AvgLikes       *int64
	AvgComments    *int64
	EngagementRate *float64
	QualityScore   float64
	Confidence     float64
	MissingFields  []string
	Reliability    Reliability
}

// EmptyRecord is the sentinel returned when no metrics are detected or
// extraction irrecoverably fails: full confidence that there is nothing
// to extract.
func EmptyRecord(subjectID string) MetricsRecord {
	return MetricsRecord{
		HasMetrics:    false,
		SubjectID:     subjectID,
		Posts:         nil,
		QualityScore:  0,
		Confidence:    1.0,
		MissingFields: []string{},
		Reliability:   ReliabilityHigh,
	}
}
