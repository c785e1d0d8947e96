package utils

import (
	"strings"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"
)

// ExtractText concatenates the text parts of an A2A message. Non-text parts
// are ignored.
func ExtractText(message protocol.Message) string {
	var sb strings.Builder
	for _, part := range message.Parts {
		if textPart, ok := part.(*protocol.TextPart); ok {
			sb.WriteString(textPart.Text)
		}
	}
	return sb.String()
}

// CountWords returns the number of whitespace-separated words in s. Token
// usage for gateway-mediated completions is approximated with word counts
// since the upstream execution engine does not report token counts.
func CountWords(s string) int64 {
	return int64(len(strings.Fields(s)))
}
