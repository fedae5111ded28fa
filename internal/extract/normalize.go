package extract

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"InfluencerOps/internal/domain"
)

var (
	nonNumericExpr = regexp.MustCompile(`[^0-9.]`)
	firstIntExpr   = regexp.MustCompile(`\d+`)
	postIDExpr     = regexp.MustCompile(`/p/([A-Za-z0-9_-]+)`)
)

var dateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"02-01-2006",
}

// ParseCount converts a loosely typed counter value into a non-negative
// integer. Strings may use k/m suffixes ("2k", "1.2M") or grouping
// ("1,250"); anything that would yield a negative number is treated as
// unparseable and reported as absent.
func ParseCount(v any) *int64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		if n < 0 {
			return nil
		}
		return int64Ptr(int64(n))
	case int:
		if n < 0 {
			return nil
		}
		return int64Ptr(int64(n))
	case int64:
		if n < 0 {
			return nil
		}
		return int64Ptr(n)
	case string:
		return parseCountString(n)
	default:
		return nil
	}
}

func parseCountString(s string) *int64 {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || strings.HasPrefix(s, "-") {
		return nil
	}

	multiplier := int64(0)
	switch {
	case strings.HasSuffix(s, "k"):
		multiplier = 1_000
		s = strings.TrimSpace(strings.TrimSuffix(s, "k"))
	case strings.HasSuffix(s, "m"):
		multiplier = 1_000_000
		s = strings.TrimSpace(strings.TrimSuffix(s, "m"))
	}

	if multiplier > 0 {
		base, err := strconv.ParseFloat(s, 64)
		if err != nil || base < 0 {
			return nil
		}
		return int64Ptr(int64(base * float64(multiplier)))
	}

	cleaned := nonNumericExpr.ReplaceAllString(s, "")
	if cleaned == "" {
		return nil
	}
	base, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return int64Ptr(int64(base))
}

// ParseDecimal converts a loosely typed fractional value (rates, scores,
// fees). Percent signs and grouping commas are stripped; negatives are
// treated as unparseable.
func ParseDecimal(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		if n < 0 {
			return nil
		}
		return float64Ptr(n)
	case int:
		if n < 0 {
			return nil
		}
		return float64Ptr(float64(n))
	case string:
		cleaned := strings.TrimSpace(strings.NewReplacer("%", "", ",", "").Replace(n))
		if cleaned == "" {
			return nil
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || f < 0 {
			return nil
		}
		return float64Ptr(f)
	default:
		return nil
	}
}

// NormalizeDate resolves a date string to YYYY-MM-DD relative to now.
// Absolute formats are tried in a fixed order, then relative phrases
// ("yesterday", "3 days ago", "2 weeks ago"); anything else defaults to
// the current date so a bad date never fails the whole record.
func NormalizeDate(raw string, now time.Time) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.Format("2006-01-02")
	}

	for _, layout := range dateFormats {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format("2006-01-02")
		}
	}

	lowered := strings.ToLower(raw)
	if strings.Contains(lowered, "yesterday") {
		return now.AddDate(0, 0, -1).Format("2006-01-02")
	}
	if strings.Contains(lowered, "ago") {
		if match := firstIntExpr.FindString(lowered); match != "" {
			n, _ := strconv.Atoi(match)
			switch {
			case strings.Contains(lowered, "week"):
				return now.AddDate(0, 0, -7*n).Format("2006-01-02")
			case strings.Contains(lowered, "day"):
				return now.AddDate(0, 0, -n).Format("2006-01-02")
			}
		}
	}

	return now.Format("2006-01-02")
}

// Normalize turns a raw candidate into a schema-conformant MetricsRecord.
// Quality fields are left for Score; everything structural happens here:
// counter coercion, date resolution, media-type validation, post id/url
// synthesis, and derivation of missing aggregates.
func Normalize(c Candidate, subjectID string, now time.Time) domain.MetricsRecord {
	subject := resolvedSubject(c.InfluencerName, subjectID)

	if !c.HasMetrics {
		return domain.EmptyRecord(subject)
	}

	rec := domain.MetricsRecord{
		HasMetrics:     true,
		SubjectID:      subject,
		Followers:      ParseCount(c.Followers),
		Following:      ParseCount(c.Following),
		PostsCount:     ParseCount(c.PostsCount),
		AvgLikes:       ParseCount(c.AvgLikes),
		AvgComments:    ParseCount(c.AvgComments),
		EngagementRate: ParseDecimal(c.EngagementRate),
		MissingFields:  c.MissingFields,
	}
	if rec.MissingFields == nil {
		rec.MissingFields = []string{}
	}

	rec.Posts = make([]domain.PostMetric, 0, len(c.RecentPosts))
	for i, p := range c.RecentPosts {
		rec.Posts = append(rec.Posts, normalizePost(p, subject, i, now))
	}

	deriveAggregates(&rec)
	return rec
}

func normalizePost(p CandidatePost, subject string, index int, now time.Time) domain.PostMetric {
	post := domain.PostMetric{
		ID:          stringValue(p.PostID),
		URL:         strings.TrimSpace(p.URL),
		MediaType:   domain.NormalizeMediaType(p.MediaType),
		Likes:       ParseCount(p.Likes),
		Comments:    ParseCount(p.Comments),
		Views:       ParseCount(p.Views),
		Reach:       ParseCount(p.Reach),
		Impressions: ParseCount(p.Impressions),
		Shares:      ParseCount(p.Shares),
		Date:        NormalizeDate(p.PostDate, now),
	}

	if post.ID == "" && post.URL != "" {
		if m := postIDExpr.FindStringSubmatch(post.URL); m != nil {
			post.ID = m[1]
		}
	}
	if post.ID == "" {
		post.ID = fmt.Sprintf("%s_post_%d", subject, index+1)
	}
	if post.URL == "" {
		post.URL = fmt.Sprintf("https://instagram.com/%s/p/%s/", subject, post.ID)
	}

	if score := ParseDecimal(p.Completeness); score != nil {
		post.Completeness = clamp01(*score)
	} else {
		post.Completeness = 0.5
	}

	return post
}

// deriveAggregates fills averages and the engagement rate only when the
// model left them absent. Posts missing a field are excluded from its
// average rather than counted as zero.
func deriveAggregates(rec *domain.MetricsRecord) {
	if rec.AvgLikes == nil {
		rec.AvgLikes = meanOf(rec.Posts, func(p domain.PostMetric) *int64 { return p.Likes })
	}
	if rec.AvgComments == nil {
		rec.AvgComments = meanOf(rec.Posts, func(p domain.PostMetric) *int64 { return p.Comments })
	}

	if rec.EngagementRate == nil &&
		rec.AvgLikes != nil && rec.AvgComments != nil &&
		rec.Followers != nil && *rec.Followers > 0 {
		rate := (float64(*rec.AvgLikes+*rec.AvgComments) / float64(*rec.Followers)) * 100
		rec.EngagementRate = float64Ptr(math.Round(rate*100) / 100)
	}
}

func meanOf(posts []domain.PostMetric, field func(domain.PostMetric) *int64) *int64 {
	var sum, n int64
	for _, p := range posts {
		if v := field(p); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return int64Ptr(sum / n)
}

func resolvedSubject(fromModel, fallback string) string {
	name := strings.TrimPrefix(strings.TrimSpace(fromModel), "@")
	if name != "" && name != "unknown" {
		return name
	}
	return fallback
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatInt(int64(s), 10)
	default:
		return ""
	}
}

func clamp01(f float64) float64 {
	return math.Min(1, math.Max(0, f))
}

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }
