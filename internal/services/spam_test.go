package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpamScore(t *testing.T) {
	longDesc := strings.Repeat("d", 50)

	tests := []struct {
		name        string
		title       string
		description string
		want        int
	}{
		{"clean", "Vintage road bike", longDesc, 0},
		{"short title", "Bike", longDesc, 20},
		{"short description", "Vintage road bike", "too short", 20},
		{"both short", "Bike", "short", 40},
		{"keyword in title", "URGENT vintage bike", longDesc, 30},
		{"keyword case insensitive", "Vintage road bike", longDesc + " Wire Transfer accepted", 30},
		{"keywords stack", "Urgent sale cash only", longDesc + " western union", 90},
		{"clamped", "Urgent", "cash only wire transfer western union", 100},
		{"title length exactly ten", "abcdefghij", longDesc, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SpamScore(tt.title, tt.description))
		})
	}
}

func TestSpamScore_BoundedAndMonotonic(t *testing.T) {
	titles := []string{"", "Bike", "A very reasonable title"}
	descriptions := []string{"", strings.Repeat("x", 49), strings.Repeat("y", 80)}

	for _, title := range titles {
		for _, desc := range descriptions {
			prev := SpamScore(title, desc)
			assert.GreaterOrEqual(t, prev, 0)
			assert.LessOrEqual(t, prev, 100)

			text := desc
			for _, keyword := range spamKeywords {
				text += " " + keyword
				score := SpamScore(title, text)
				assert.GreaterOrEqual(t, score, prev)
				assert.LessOrEqual(t, score, 100)
				prev = score
			}
		}
	}
}

func TestModerationReason(t *testing.T) {
	assert.Equal(t, "New listing awaiting review", moderationReason(0))
	assert.Equal(t, "New listing - Spam score: 40", moderationReason(40))
}
