package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"
)

func TestExtractText(t *testing.T) {
	msg := protocol.NewMessage(protocol.MessageRoleUser, []protocol.Part{
		protocol.NewTextPart("hello "),
		protocol.NewTextPart("world"),
	})
	assert.Equal(t, "hello world", ExtractText(msg))

	empty := protocol.NewMessage(protocol.MessageRoleUser, nil)
	assert.Equal(t, "", ExtractText(empty))
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, int64(0), CountWords(""))
	assert.Equal(t, int64(0), CountWords("   "))
	assert.Equal(t, int64(3), CountWords("one two three"))
	assert.Equal(t, int64(2), CountWords("  spaced \n out "))
}
