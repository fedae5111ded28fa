package contracts

import "fmt"

const extractionSystemPrompt = `You are a contract analyst for a social media marketing agency. ` +
	`You read influencer marketing contracts and return their key terms as JSON. ` +
	`Respond with a single JSON object and nothing else. ` +
	`Use null for any field the contract does not state. Do not guess values.`

const contractSchema = `{
  "agency_name": "name of the marketing agency",
  "agency_address": "registered address of the agency",
  "client_name": "name of the client or influencer being contracted",
  "client_address": "registered address of the client",
  "contract_date": "date the contract was made, YYYY-MM-DD",
  "total_fee": "total fee as a number, without currency symbols",
  "currency": "ISO currency code such as USD or EUR",
  "promoted_service_product": "the service or product being promoted",
  "platforms": ["list of social media platforms named in the contract"],
  "platform_1": "first platform",
  "platform_1_number": "number of posts required on the first platform",
  "platform_2": "second platform, if any",
  "platform_2_number": "number of posts required on the second platform",
  "schedule": [
    {
      "platform": "platform for this deliverable",
      "date": "planned date, YYYY-MM-DD",
      "content_theme": "theme or topic of the post",
      "impressions": "impressions objective as a number",
      "views": "views objective as a number",
      "likes": "likes objective as a number",
      "comments": "comments objective as a number",
      "shares": "shares objective as a number"
    }
  ],
  "post_duration": "days each post must stay live, as a number",
  "payment_deadline": "payment terms, e.g. number of days after final post",
  "agency_sign_date": "date the agency signed, YYYY-MM-DD",
  "influencer_sign_date": "date the influencer signed, YYYY-MM-DD"
}`

func buildContractPrompt(text string) string {
	return fmt.Sprintf(
		"Extract the contract terms from the document below.\n\n"+
			"Return JSON matching exactly this structure:\n%s\n\nDocument:\n%s",
		contractSchema, text)
}
