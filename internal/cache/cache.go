package cache

import (
	"crypto/sha256"
	"fmt"
	"time"

	"SalesTrainer/internal/llm"
)

// CachedReply is a previously returned completion for a message sequence.
type CachedReply struct {
	Content   string
	Timestamp time.Time
}

// Key derives a cache key from an ordered message sequence. Two sequences
// with the same roles and contents in the same order share a key.
func Key(messages []llm.Message) string {
	h := sha256.New()
	for _, msg := range messages {
		h.Write([]byte(msg.Role))
		h.Write([]byte(msg.Content))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
