package utils

import (
	"strings"
)

// ExtractEmailAddress returns the bare address from a From header value,
// preferring the bracketed form ("Name <user@domain>") over the display name.
func ExtractEmailAddress(from string) string {
	from = strings.TrimSpace(from)
	if from == "" {
		return ""
	}

	if strings.Contains(from, "<") && strings.Contains(from, ">") {
		startIdx := strings.LastIndex(from, "<") + 1
		endIdx := strings.LastIndex(from, ">")
		if startIdx > 0 && endIdx > startIdx {
			return strings.TrimSpace(from[startIdx:endIdx])
		}
	}

	return from
}

func ExtractDomainFromEmail(email string) string {
	email = ExtractEmailAddress(email)

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}

	return strings.ToLower(strings.TrimSpace(parts[1]))
}
