package abort

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollapse(t *testing.T) {
	toString := func(n int) string { return strconv.Itoa(n) }

	v, ok := Collapse(Ok(12), toString).Get()
	require.True(t, ok)
	assert.Equal(t, "12", v)

	assert.True(t, Collapse(Cancelled[int](), toString).IsCancelled())
}

func TestThen(t *testing.T) {
	called := false
	res := Then(Cancelled[int](), func(int) Result[string] {
		called = true
		return Ok("x")
	})
	assert.False(t, called)
	assert.True(t, res.IsCancelled())

	v, ok := Then(Ok(1), func(n int) Result[int] { return Ok(n + 1) }).Get()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestFinish(t *testing.T) {
	t.Run("value", func(t *testing.T) {
		v, ok, err := Finish(NewToken(), Ok("id-1"))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "id-1", v)
	})

	t.Run("tripped token wins over value", func(t *testing.T) {
		tok := NewToken()
		tok.Trip(Rejection("consecutive contributions not allowed"))

		_, ok, err := Finish(tok, Ok("ignored"))
		assert.False(t, ok)
		var reason *Reason
		require.ErrorAs(t, err, &reason)
		assert.Equal(t, Client, reason.Responsible)
		assert.Equal(t, "consecutive contributions not allowed", reason.Message)
	})

	t.Run("no result without error", func(t *testing.T) {
		_, ok, err := Finish(NewToken(), Cancelled[string]())
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}
