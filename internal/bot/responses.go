package bot

import (
	"fmt"
	"strings"

	"InfluencerOps/internal/domain"
)

const helpMessage = `<b>🔧 How to use this bot:</b>

<b>👨‍💼 Admin Commands:</b>
• "Request metrics from @username"
• /summary — Stats overview
• /recent @username — Recent metrics

<b>📊 For Influencers:</b>
• We'll reach out with clear requests
• Send metrics in any format you prefer
• Screenshots of Instagram insights work great
• Don't worry about perfect formatting

<b>📋 Typical metrics we collect:</b>
• Follower/following counts
• Recent post performance
• Engagement rates

Need help? Just ask! 🤝`

const metricsRequestMessage = `Just checking in to see if you can share your recent Instagram metrics 😊

<b>📊 What we'd love to see:</b>

<b>For your last 3-5 posts:</b>
• Post URLs (or brief descriptions)
• Likes and comments for each
• Post dates
• Views (for videos/reels)

<b>Plus your current:</b>
• Follower count
• Following count
• Total posts

<b>💡 Any format works!</b>
You can send:
• Screenshots of your insights
• Copy-paste the numbers
• Quick summary like "Post 1: 2,150 likes, 120 comments..."

<b>⏰ Timeline:</b> No rush — send when convenient!

We're here to help if you need anything 🙏`

const screenshotMessage = `Thanks for the screenshot! 📸 Could you also send the key metrics as text so we can process them accurately?

Something like:
• Followers: 45,230
• Following: 892
• Posts: 324
• Average likes: 1,850

We're here to help if you need anything! 😊`

const fallbackGreeting = `Hello! 👋

<b>Admins:</b> Try 'Request metrics from @username'
<b>Influencers:</b> Send your Instagram metrics when requested
<b>Help:</b> /help`

const processingMessage = "Perfect! We're processing your data now 🔄"

const storageIssueMessage = "Thanks for sending this! We're having a technical issue storing the data — we'll sort this out and get back to you shortly 😊"

const technicalIssueMessage = "Thanks for your message! We're experiencing a technical issue — we'll get back to you shortly 😊"

const missingHandleMessage = "Please specify the influencer handle:\n\n" +
	"• 'Request metrics from @username'\n" +
	"• 'Get data from @handle'"

const emptySummaryMessage = "📊 No metrics collected yet.\n\n" +
	"Start by requesting data from an influencer! Try:\n'Request metrics from @username'"

func welcomeMessage(firstName string) string {
	if firstName == "" {
		firstName = "there"
	}
	return fmt.Sprintf(`Hello %s! 👋

<b>🤖 Instagram Metrics Collection</b>

<b>🎯 For Admins:</b>
• "Request metrics from @username"
• /summary — Collection overview
• /recent @username — Recent data

<b>📊 For Influencers:</b>
• Just send your metrics when we reach out
• Screenshots or text format both work
• We'll help format everything properly

<b>💡 Quick start:</b> Try "Request metrics from @[handle]"

Type /help for more details!`, firstName)
}

func requestConfirmation(handle string) string {
	return fmt.Sprintf(`✅ <b>Request sent to @%s</b>

We've reached out with a friendly request for their metrics.

<b>📤 What happens next:</b>
• They'll receive our agency-tone request
• We'll process their response
• You'll get notified when data is collected
• Any issues get escalated for manual review

<b>⏳ Expected timeline:</b> Most influencers respond within 24-48 hours`, handle)
}

func summaryMessage(sum domain.MetricsSummary) string {
	latest := sum.LatestCollection
	if latest == "" {
		latest = "N/A"
	}
	return fmt.Sprintf(`<b>📊 Collection Summary</b>

<b>Total Records:</b> %d
<b>Unique Influencers:</b> %d
<b>Latest Collection:</b> %s

<b>📈 Average Metrics:</b>
• Followers: %.0f
• Engagement: %.1f%%`,
		sum.TotalRecords, sum.UniqueInfluencers, latest,
		sum.AvgFollowers, sum.AvgEngagement)
}

func recentMessage(handle string, rows []domain.StoredMetrics) string {
	if len(rows) == 0 {
		return fmt.Sprintf("📊 No recent data for @%s\n\nTry requesting fresh metrics!", handle)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>📈 Recent data for @%s</b>\n\n", handle)
	for i, m := range rows {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "<b>%d. %s</b>\n", i+1, m.CollectedAt.Format("2006-01-02"))
		if m.Followers != nil {
			fmt.Fprintf(&b, "   Followers: %d\n", *m.Followers)
		} else {
			b.WriteString("   Followers: N/A\n")
		}
		if m.EngagementRate != nil {
			fmt.Fprintf(&b, "   Engagement: %.1f%%\n\n", *m.EngagementRate)
		} else {
			b.WriteString("   Engagement: N/A\n\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func successMessage(rec domain.MetricsRecord) string {
	followers := "N/A"
	if rec.Followers != nil {
		followers = fmt.Sprintf("%d", *rec.Followers)
	}
	engagement := "N/A"
	if rec.EngagementRate != nil {
		engagement = fmt.Sprintf("%.2f%%", *rec.EngagementRate)
	}
	return fmt.Sprintf(`Everything's in — thank you so much 🙏

<b>📊 Your metrics have been processed:</b>
• Influencer: @%s
• Posts analyzed: %d
• Followers: %s
• Engagement rate: %s
• Data quality: %.1f/1.0

We'll review and get back to you with any follow-up questions. Usually takes 1-2 business days for full analysis.`,
		rec.SubjectID, len(rec.Posts), followers, engagement, rec.QualityScore)
}
