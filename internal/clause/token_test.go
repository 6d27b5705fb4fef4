package clause

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceTokens_Sequential(t *testing.T) {
	tokens := NewSequenceTokens()

	assert.Equal(t, "00001", tokens.Token(5))
	assert.Equal(t, "00002", tokens.Token(5))
	assert.Equal(t, "003", tokens.Token(3))
}

func TestSequenceTokens_TruncatesToWidth(t *testing.T) {
	tokens := NewSequenceTokens()
	for i := 0; i < 11; i++ {
		tokens.Token(1)
	}
	assert.Equal(t, "2", tokens.Token(1))
}

func TestSequenceTokens_Reset(t *testing.T) {
	tokens := NewSequenceTokens()
	tokens.Token(5)
	tokens.Token(5)

	tokens.Reset()
	assert.Equal(t, "00001", tokens.Token(5))
}

func TestSequenceTokens_ConcurrentUnique(t *testing.T) {
	tokens := NewSequenceTokens()

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok := tokens.Token(5)
			mu.Lock()
			seen[tok] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
}
