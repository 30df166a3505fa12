package services

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

var spamKeywords = []string{"cash only", "urgent", "wire transfer", "western union"}

const maxSpamScore = 100

// SpamScore is an advisory 0-100 heuristic. It never gates creation, it only
// annotates the moderation queue entry.
func SpamScore(title, description string) int {
	score := 0

	if utf8.RuneCountInString(title) < minTitleLength {
		score += 20
	}
	if utf8.RuneCountInString(description) < minDescriptionLength {
		score += 20
	}

	text := strings.ToLower(title + " " + description)
	for _, keyword := range spamKeywords {
		if strings.Contains(text, keyword) {
			score += 30
		}
	}

	return min(score, maxSpamScore)
}

func moderationReason(score int) string {
	if score > 0 {
		return fmt.Sprintf("New listing - Spam score: %d", score)
	}
	return "New listing awaiting review"
}
