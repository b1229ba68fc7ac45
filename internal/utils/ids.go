package utils

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const nanoidAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func GenerateNanoIDWithPrefix(prefix string, length int) string {
	id, err := gonanoid.Generate(nanoidAlphabet, length)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%s_%s", prefix, id)
}

// GenerateMessageID creates a unique Message-ID header value per RFC 5322.
func GenerateMessageID(domain string) string {
	id, err := gonanoid.Generate(nanoidAlphabet, 12)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("<%d.%s@%s>", time.Now().UnixMicro(), id, domain)
}
