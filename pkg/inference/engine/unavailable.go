package engine

import (
	"context"
)

// Unavailable is the engine used when no credentials are configured.
// Every call fails with a BackendError wrapping ErrMissingCredentials.
type Unavailable struct {
	provider string
}

func NewUnavailable(provider string) *Unavailable {
	return &Unavailable{provider: provider}
}

func (u *Unavailable) RunInference(ctx context.Context, _ *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, NewBackendError(u.provider, "configure", ErrMissingCredentials)
}

func (u *Unavailable) Provider() string {
	return u.provider
}

func (u *Unavailable) Model() string {
	return ""
}

var _ Engine = (*Unavailable)(nil)
var _ Named = (*Unavailable)(nil)

// IsPlaceholderKey reports whether key is unusable: empty or the "dummy_key" placeholder.
func IsPlaceholderKey(key string) bool {
	return key == "" || key == "dummy_key"
}

// Unwrapper is implemented by engines that decorate another engine.
type Unwrapper interface {
	Unwrap() Engine
}

// IsUnavailable reports whether e, or an engine it wraps, is Unavailable.
func IsUnavailable(e Engine) bool {
	for e != nil {
		if _, ok := e.(*Unavailable); ok {
			return true
		}
		u, ok := e.(Unwrapper)
		if !ok {
			return false
		}
		e = u.Unwrap()
	}
	return false
}
