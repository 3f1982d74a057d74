package auth

import (
	"context"
	"time"
)

// Session is the credential state the identity provider hands out after a
// successful sign-in, sign-up, or restore.
type Session struct {
	UID       string
	Email     string
	Token     string
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Provider is the identity provider surface the session store depends on.
//
// Subscribers observe out-of-band session changes only (a restore at app
// start, an expired token being cleared); a caller's own SignUp, SignIn or
// SignOut never triggers its own subscription; those operations report
// their outcome through their return values.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	CurrentSession() *Session
	Subscribe(fn func(*Session)) func()
}
