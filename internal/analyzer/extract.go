package analyzer

import (
	"regexp"
	"strings"

	"clauselens/internal/models"
)

const months = `January|February|March|April|May|June|July|August|September|October|November|December`

// Pattern order matters: the first pattern to match a given string claims it
// in the dedup set.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}`),
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`(?i)(` + months + `)\s+\d{1,2},?\s+\d{4}`),
	regexp.MustCompile(`(?i)\d{1,2}\s+(` + months + `)\s+\d{4}`),
}

var timelineRe = regexp.MustCompile(`(?i)within\s+\d+\s+days?`)

var moneyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$[\d,]+\.?\d*`),
	regexp.MustCompile(`(?i)USD\s*[\d,]+\.?\d*`),
	regexp.MustCompile(`\d+\.?\d*\s*%`),
	regexp.MustCompile(`(?i)\b\d+\s*percent\b`),
}

// ExtractDates pulls explicit dates out of the text with plain regexes,
// independent of the completion service, giving the summary a deterministic
// floor of factual extraction. At most 5 dates plus 2 "within N days"
// timelines are returned.
func ExtractDates(text string) []models.LabelValue {
	var dates []models.LabelValue
	seen := make(map[string]bool)
	for _, re := range datePatterns {
		for _, match := range re.FindAllString(text, -1) {
			if !seen[match] && len(dates) < 5 {
				seen[match] = true
				dates = append(dates, models.LabelValue{Label: "Date", Value: match})
			}
		}
	}

	timelines := timelineRe.FindAllString(text, -1)
	if len(timelines) > 2 {
		timelines = timelines[:2]
	}
	for _, match := range timelines {
		dates = append(dates, models.LabelValue{Label: "Timeline", Value: match})
	}
	return dates
}

// ExtractMoney pulls currency amounts and percentages out of the text,
// capped at 5, labeled "Rate" for percentages and "Amount" otherwise.
func ExtractMoney(text string) []models.LabelValue {
	var money []models.LabelValue
	seen := make(map[string]bool)
	for _, re := range moneyPatterns {
		for _, match := range re.FindAllString(text, -1) {
			if seen[match] || len(money) >= 5 {
				continue
			}
			seen[match] = true
			label := "Amount"
			if strings.Contains(match, "%") || strings.Contains(strings.ToLower(match), "percent") {
				label = "Rate"
			}
			money = append(money, models.LabelValue{Label: label, Value: match})
		}
	}
	return money
}
