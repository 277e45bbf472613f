package abort

import "sync"

// Token is the cancellation flag of one inbound request.
// It is tripped at most once; later trips keep the first reason.
type Token struct {
	mu      sync.Mutex
	tripped bool
	reason  *Reason
}

func NewToken() *Token {
	return &Token{}
}

// Trip records reason if the token is still live and reports whether
// this call was the one that tripped it.
func (t *Token) Trip(reason *Reason) bool {
	if reason == nil || (reason.Responsible != Client && reason.Responsible != Server) {
		msg := "request failed"
		if reason != nil && reason.Message != "" {
			msg = reason.Message
		}
		reason = Failure(msg)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tripped {
		return false
	}
	t.tripped = true
	t.reason = reason
	return true
}

func (t *Token) IsTripped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tripped
}

// Reason is nil while the token is live.
func (t *Token) Reason() *Reason {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reason
}
