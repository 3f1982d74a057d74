package store

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kkratossdead/mobile-renting/auth"
	"github.com/kkratossdead/mobile-renting/client"
)

type AuthState int

const (
	StateUninitialized AuthState = iota
	StateLoading
	StateAuthenticated
	StateAnonymous
)

// SessionUser is the signed-in account as the rest of the app sees it.
type SessionUser struct {
	UID   string
	Email string
	Role  string
}

// SessionStore bridges the identity provider's session lifecycle to
// application state and keeps the backend's shadow account record in sync
// on registration.
type SessionStore struct {
	provider   auth.Provider
	authClient *client.AuthClient
	logger     *logrus.Logger
	tracer     trace.Tracer

	mu          sync.Mutex
	state       AuthState
	user        *SessionUser
	err         string
	subscribers map[int]func(AuthState, *SessionUser)
	nextSubID   int
}

func NewSessionStore(provider auth.Provider, authClient *client.AuthClient, logger *logrus.Logger, tracer trace.Tracer) *SessionStore {
	return &SessionStore{
		provider:    provider,
		authClient:  authClient,
		logger:      logger,
		tracer:      tracer,
		state:       StateUninitialized,
		subscribers: make(map[int]func(AuthState, *SessionUser)),
	}
}

// Init subscribes to out-of-band session changes (restore at startup,
// token expiry) and reflects whatever session already exists. It returns
// the unsubscribe handle, mirroring the provider's contract.
func (s *SessionStore) Init() func() {
	unsubscribe := s.provider.Subscribe(func(session *auth.Session) {
		s.mu.Lock()
		s.applySession(session)
		state := s.state
		user := s.userLocked()
		listeners := s.listenersLocked()
		s.mu.Unlock()

		for _, fn := range listeners {
			fn(state, user)
		}
	})

	session := s.provider.CurrentSession()

	s.mu.Lock()
	s.applySession(session)
	s.mu.Unlock()

	return unsubscribe
}

// Subscribe registers a callback for out-of-band session changes, the same
// changes Init relays from the provider. The store's own Register, Login
// and Logout do not fire it; their outcome is their return value.
func (s *SessionStore) Subscribe(fn func(AuthState, *SessionUser)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// userLocked and listenersLocked must run with the mutex held.
func (s *SessionStore) userLocked() *SessionUser {
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

func (s *SessionStore) listenersLocked() []func(AuthState, *SessionUser) {
	listeners := make([]func(AuthState, *SessionUser), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		listeners = append(listeners, fn)
	}
	return listeners
}

// applySession must run with the mutex held.
func (s *SessionStore) applySession(session *auth.Session) {
	if session != nil {
		s.user = &SessionUser{UID: session.UID, Email: session.Email}
		s.state = StateAuthenticated
	} else {
		s.user = nil
		s.state = StateAnonymous
	}
}

// Register creates the identity-provider credentials first and only then
// writes the backend's shadow record. A backend failure after the identity
// account was created surfaces to the caller, but the identity account is
// left in place; there is no compensating rollback.
func (s *SessionStore) Register(ctx context.Context, email, password, role string) error {
	ctx, span := s.tracer.Start(ctx, "SessionStore.Register")
	defer span.End()

	s.begin()
	s.logger.Infoln("SessionStore.Register : registering", email)

	session, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.fail(err)
		return err
	}

	if err := s.authClient.Register(ctx, email, password, role); err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warnf("SessionStore.Register : backend registration failed after identity sign-up: %s", err)
		s.fail(err)
		return err
	}

	s.mu.Lock()
	s.user = &SessionUser{UID: session.UID, Email: session.Email, Role: role}
	s.state = StateAuthenticated
	s.mu.Unlock()

	return nil
}

// Login delegates to the identity provider only; the backend is not
// re-consulted.
func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	ctx, span := s.tracer.Start(ctx, "SessionStore.Login")
	defer span.End()

	s.begin()
	s.logger.Infoln("SessionStore.Login : signing in", email)

	session, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.fail(err)
		return err
	}

	s.mu.Lock()
	s.user = &SessionUser{UID: session.UID, Email: session.Email}
	s.state = StateAuthenticated
	s.mu.Unlock()

	return nil
}

// Logout clears local session state once the provider call resolves,
// regardless of its outcome.
func (s *SessionStore) Logout(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "SessionStore.Logout")
	defer span.End()

	s.begin()

	err := s.provider.SignOut(ctx)

	s.mu.Lock()
	s.user = nil
	s.state = StateAnonymous
	if err != nil {
		s.err = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s *SessionStore) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *SessionStore) User() *SessionUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userLocked()
}

func (s *SessionStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *SessionStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

func (s *SessionStore) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateLoading
	s.err = ""
}

func (s *SessionStore) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err.Error()
	if s.user != nil {
		s.state = StateAuthenticated
	} else {
		s.state = StateAnonymous
	}
}
