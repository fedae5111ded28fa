package extract

import "fmt"

const extractionSystemPrompt = "You are a data extraction expert specializing in social media metrics " +
	"from informal influencer communications. Return only valid JSON."

const resolverSystemPrompt = `Extract the Instagram username from influencer messages.

Look for patterns like @username, "my username is", "i'm @", etc.
Return ONLY the username without the @ symbol.
If no username is found, return "unknown"

Examples:
"Hey, my username is @fitnessguru" -> "fitnessguru"
"@johndoe here!" -> "johndoe"
"it's @wellness_coach" -> "wellness_coach"
"no mention" -> "unknown"`

// metricsSchema is a literal description of the expected reply shape,
// embedded in the extraction prompt field by field.
const metricsSchema = `{
  "has_metrics": "boolean - true if metrics found",
  "influencer_name": "string - Instagram username without @",
  "data_quality_score": "float - 0-1 score indicating completeness/reliability",
  "extraction_confidence": "float - 0-1 confidence in extraction accuracy",
  "recent_posts": [
    {
      "post_id": "string - post ID or URL",
      "url": "string - post URL or description",
      "media_type": "string - photo|video|reel|carousel",
      "likes": "integer - number of likes",
      "comments": "integer - number of comments",
      "post_date": "string - YYYY-MM-DD format",
      "views": "integer - views (for videos/reels) or null",
      "reach": "integer - reach if available or null",
      "impressions": "integer - impressions if available or null",
      "shares": "integer - shares if available or null",
      "completeness_score": "float - 0-1 indicating how complete this post data is"
    }
  ],
  "followers_count": "integer - total followers or null",
  "following_count": "integer - total following or null",
  "posts_count": "integer - total posts or null",
  "avg_likes_per_post": "integer - average likes or null",
  "avg_comments_per_post": "integer - average comments or null",
  "engagement_rate": "float - engagement rate percentage or null",
  "missing_data_points": "array - list of metrics mentioned but not extractable",
  "data_source_reliability": "string - high|medium|low based on how data was presented"
}`

func buildMetricsPrompt(text, subjectID string) string {
	return fmt.Sprintf(`Extract Instagram metrics from this influencer response with quality assessment:

INFLUENCER: @%s
MESSAGE: %q

Expected Output Schema:
%s

EXTRACTION INSTRUCTIONS:
1. Set influencer_name to: %q (without @ symbol)
2. Look for individual post performance data (likes, comments, views, etc.)
3. Extract post URLs like "https://www.instagram.com/p/DKWmrCONQqs/"
4. QUALITY ASSESSMENT: Rate data completeness and reliability
5. HANDLE INFORMAL LANGUAGE: "got like 2k likes" = 2000 likes
6. ABBREVIATIONS: "45K" = 45000, "1.2M" = 1200000
7. TYPOS: "liks" = likes, "coments" = comments
8. If metrics are found for ANY posts, set has_metrics to true
9. Rate extraction confidence based on clarity of data provided
10. Note any missing data points that were mentioned but unclear

QUALITY SCORING:
- data_quality_score: 1.0 = complete metrics, 0.5 = partial, 0.1 = minimal
- extraction_confidence: 1.0 = very clear data, 0.5 = some interpretation needed
- completeness_score (per post): 1.0 = all fields filled, 0.5 = basic metrics only

HANDLE INFORMAL RESPONSES:
- "my post got like 2,341 liks and 156 coments" -> likes: 2341, comments: 156
- "around 67k followers" -> followers_count: 67000
- "posted 3 days ago" -> calculate approximate date

Return ONLY the JSON object:`, subjectID, text, metricsSchema, subjectID)
}
