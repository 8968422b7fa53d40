package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_Valid(t *testing.T) {
	tests := []struct {
		product Product
		want    bool
	}{
		{ProductChatbot, true},
		{ProductWritingHelper, true},
		{ProductCodeReviewer, true},
		{ProductSupportBot, true},
		{ProductContentSummarizer, true},
		{Product("time_machine"), false},
		{Product(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.product), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.product.Valid())
		})
	}
}

func TestNewSession(t *testing.T) {
	session := NewSession("sess-1", ProductChatbot,
		Message{Role: "system", Content: "You are helpful."})

	assert.Equal(t, "sess-1", session.ID)
	assert.Equal(t, ProductChatbot, session.Product)
	require.Len(t, session.Messages, 1)
	assert.False(t, session.CreatedAt.IsZero())
	assert.False(t, session.UpdatedAt.IsZero())
	assert.NotNil(t, session.Metadata)
}

func TestSession_AddMessage(t *testing.T) {
	session := NewSession("sess-1", ProductChatbot)
	before := session.UpdatedAt

	time.Sleep(time.Millisecond)
	session.AddMessage(Message{Role: "user", Content: "hi"})

	assert.Equal(t, 1, session.MessageCount())
	assert.True(t, session.UpdatedAt.After(before))
}

func TestSession_Clone(t *testing.T) {
	session := NewSession("sess-1", ProductChatbot,
		Message{Role: "system", Content: "prompt"})
	session.Metadata["source"] = "test"

	clone := session.Clone()

	// Mutating the clone must not leak into the original.
	clone.Messages[0].Content = "changed"
	clone.Metadata["source"] = "changed"
	clone.AddMessage(Message{Role: "user", Content: "extra"})

	assert.Equal(t, "prompt", session.Messages[0].Content)
	assert.Equal(t, "test", session.Metadata["source"])
	assert.Equal(t, 1, session.MessageCount())
	assert.Equal(t, 2, clone.MessageCount())
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "chatbot:sess-1", SessionKey("sess-1", ProductChatbot))

	session := NewSession("sess-1", ProductChatbot)
	assert.Equal(t, "chatbot:sess-1", session.Key())

	// Same ID under different products must not collide.
	assert.NotEqual(t,
		SessionKey("sess-1", ProductChatbot),
		SessionKey("sess-1", ProductSupportBot))
}
