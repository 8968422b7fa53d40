package models

import (
	"time"
)

// Product identifies which AI product a request or session belongs to.
type Product string

const (
	ProductChatbot           Product = "chatbot"
	ProductWritingHelper     Product = "writing_helper"
	ProductCodeReviewer      Product = "code_reviewer"
	ProductSupportBot        Product = "support_bot"
	ProductContentSummarizer Product = "content_summarizer"
)

// Valid reports whether p names a known product.
func (p Product) Valid() bool {
	switch p {
	case ProductChatbot, ProductWritingHelper, ProductCodeReviewer,
		ProductSupportBot, ProductContentSummarizer:
		return true
	}
	return false
}

// Message is a single message in a conversation. Messages are immutable
// once appended to a session.
type Message struct {
	Role    string `json:"role"` // "system", "user", or "assistant"
	Content string `json:"content"`
}

// Session is a conversation session. Sessions are keyed uniquely by
// (Product, ID) and hold an append-only ordered message history.
type Session struct {
	ID        string            `json:"session_id"`
	Product   Product           `json:"product"`
	Messages  []Message         `json:"messages"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewSession creates a session with the given initial messages.
func NewSession(id string, product Product, messages ...Message) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Product:   product,
		Messages:  messages,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  make(map[string]string),
	}
}

// AddMessage appends a message to the session and advances UpdatedAt.
func (s *Session) AddMessage(msg Message) {
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now().UTC()
}

// MessageCount returns the number of messages in the session.
func (s *Session) MessageCount() int {
	return len(s.Messages)
}

// Clone returns a deep copy of the session. Stores copy on their
// boundaries so two callers holding the same session never share the
// underlying message slice.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Messages = make([]Message, len(s.Messages))
	copy(cp.Messages, s.Messages)
	if s.Metadata != nil {
		cp.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

// Key returns the composite storage key for the session.
func (s *Session) Key() string {
	return SessionKey(s.ID, s.Product)
}

// SessionKey builds the composite storage key for a (product, id) pair.
func SessionKey(id string, product Product) string {
	return string(product) + ":" + id
}
