// Package lifetime tracks whether the owner of an asynchronous request is
// still around to receive its result.
//
// A component embeds a Token and releases it from Close. Completions that a
// collaborator invokes after the release resolve to no-ops.
package lifetime

import (
	"sync"
	"sync/atomic"
)

// Token is alive until Release is called. The zero value is alive.
type Token struct {
	released atomic.Bool
}

func (t *Token) Release() {
	t.released.Store(true)
}

func (t *Token) Alive() bool {
	return !t.released.Load()
}

// Guard wraps completion so that it runs at most once and only while t is
// alive at the moment the wrapper is invoked.
func Guard[T any](t *Token, completion func(T)) func(T) {
	var once sync.Once
	return func(result T) {
		if !t.Alive() {
			return
		}
		once.Do(func() {
			completion(result)
		})
	}
}
