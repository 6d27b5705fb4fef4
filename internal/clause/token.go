package clause

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// TokenSource produces short random tokens for de-duplicating keys.
type TokenSource interface {
	Token(n int) string
}

// UUIDTokens draws tokens from random (version 4) UUIDs.
// Tokens are lowercase hexadecimal.
type UUIDTokens struct{}

// Token returns n random hex characters.
func (UUIDTokens) Token(n int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	for b.Len() < n {
		b.WriteString(strings.ReplaceAll(uuid.NewString(), "-", ""))
	}
	// the tail of a v4 UUID carries no version or variant bits
	s := b.String()
	return s[len(s)-n:]
}

// SequenceTokens produces deterministic tokens: the n-th call returns n
// left-padded with zeros, so repeated keys read "color.00001",
// "color.00002". Used for reproducible CLI output and golden files.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceTokens struct {
	mu  sync.Mutex
	seq int64
}

// NewSequenceTokens creates a token source whose first token is 1.
func NewSequenceTokens() *SequenceTokens {
	return &SequenceTokens{}
}

// Token returns the next token, width characters wide.
func (s *SequenceTokens) Token(width int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	tok := fmt.Sprintf("%0*d", width, s.seq)
	if len(tok) > width {
		tok = tok[len(tok)-width:]
	}
	return tok
}

// Reset rewinds the sequence so the next token is 1 again.
func (s *SequenceTokens) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = 0
}
