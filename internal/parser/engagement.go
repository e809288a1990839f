// internal/parser/engagement.go
package parser

import (
	"strings"

	"github.com/clinicflow/roteiros/internal/models"
)

// DetectEngagementDevice tags a beat with the first interaction prompt it carries,
// checked in the order fire emoji, poll, direct question, share, reciprocity.
func DetectEngagementDevice(content string) models.EngagementDevice {
	s := strings.ToLower(content)
	switch {
	case strings.Contains(s, "🔥") || strings.Contains(s, "foguinho"):
		return models.DeviceFire
	case strings.Contains(s, "enquete"):
		return models.DevicePoll
	case strings.Contains(s, "?") &&
		(containsWord(s, "você") || containsWord(s, "voce") || containsWord(s, "qual")):
		return models.DeviceQuestion
	case strings.Contains(s, "compartilha") || strings.Contains(s, "manda pra") || strings.Contains(s, "manda para"):
		return models.DeviceShare
	case containsWord(s, "se") && containsWord(s, "eu"):
		return models.DeviceReciprocity
	}
	return models.DeviceNone
}
