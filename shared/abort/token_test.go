package abort

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenTrip(t *testing.T) {
	t.Run("new token is live", func(t *testing.T) {
		tok := NewToken()
		assert.False(t, tok.IsTripped())
		assert.Nil(t, tok.Reason())
	})

	t.Run("first trip wins", func(t *testing.T) {
		tok := NewToken()
		first := Rejection("first")

		assert.True(t, tok.Trip(first))
		assert.False(t, tok.Trip(Failure("second")))

		assert.True(t, tok.IsTripped())
		assert.Same(t, first, tok.Reason())
	})

	t.Run("nil reason becomes a server failure", func(t *testing.T) {
		tok := NewToken()
		require.True(t, tok.Trip(nil))
		assert.Equal(t, Server, tok.Reason().Responsible)
	})

	t.Run("unknown responsibility becomes server", func(t *testing.T) {
		tok := NewToken()
		require.True(t, tok.Trip(&Reason{Message: "who knows"}))
		assert.Equal(t, Server, tok.Reason().Responsible)
		assert.Equal(t, "who knows", tok.Reason().Message)
	})

	t.Run("concurrent trips record exactly one reason", func(t *testing.T) {
		tok := NewToken()
		var wg sync.WaitGroup
		var mu sync.Mutex
		wins := 0
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if tok.Trip(Rejection("x")) {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})
}

func TestReasonStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Rejection("bad").StatusCode())
	assert.Equal(t, http.StatusInternalServerError, Failure("oops").StatusCode())
	assert.Equal(t, http.StatusNotFound, (&Reason{Responsible: Client, Message: "nf", Status: http.StatusNotFound}).StatusCode())
}
