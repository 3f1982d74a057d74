package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cristalhq/jwt/v4"
	"github.com/sirupsen/logrus"

	"github.com/kkratossdead/mobile-renting/errors"
)

const defaultIdentityTimeout = 10 * time.Second

// HTTPProvider talks to a hosted identity service over its REST surface.
// The service owns credentials and token issuance; this client only holds
// the current session and translates the service's error codes.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
	logger  *logrus.Logger

	mu          sync.Mutex
	session     *Session
	subscribers map[int]func(*Session)
	nextSubID   int
}

func NewHTTPProvider(baseURL, apiKey string, httpClient *http.Client, logger *logrus.Logger) *HTTPProvider {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &HTTPProvider{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      apiKey,
		timeout:     defaultIdentityTimeout,
		client:      httpClient,
		logger:      logger,
		subscribers: make(map[int]func(*Session)),
	}
}

type identityRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type identityResponse struct {
	IDToken   string `json:"idToken"`
	Email     string `json:"email"`
	LocalID   string `json:"localId"`
	ExpiresIn string `json:"expiresIn"`
}

type identityErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *HTTPProvider) SignUp(ctx context.Context, email, password string) (*Session, error) {
	session, err := p.credentialCall(ctx, "accounts:signUp", email, password)
	if err != nil {
		return nil, err
	}

	p.setSession(session, false)
	return session, nil
}

func (p *HTTPProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	session, err := p.credentialCall(ctx, "accounts:signInWithPassword", email, password)
	if err != nil {
		return nil, err
	}

	p.setSession(session, false)
	return session, nil
}

// SignOut discards the held session. Token revocation is the identity
// service's concern; the client only forgets the credential.
func (p *HTTPProvider) SignOut(ctx context.Context) error {
	p.setSession(nil, false)
	return nil
}

// Restore rebuilds a session from a previously issued token, the way a
// mobile app resumes a persisted sign-in at startup. Subscribers are
// notified because the change arrives outside any caller operation.
func (p *HTTPProvider) Restore(token string) (*Session, error) {
	session, err := sessionFromToken(token)
	if err != nil {
		return nil, err
	}

	if session.Expired(time.Now()) {
		p.logger.Infoln("HTTPProvider.Restore : stored token already expired")
		p.setSession(nil, true)
		return nil, &errors.IdentityError{Code: errors.CodeInvalidLoginCredentials}
	}

	p.setSession(session, true)
	return session, nil
}

// CurrentSession returns the held session, clearing it first when the
// token has lapsed. Expiry is detected lazily on access; the clear is an
// out-of-band change, so subscribers hear about it.
func (p *HTTPProvider) CurrentSession() *Session {
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()

	if session == nil {
		return nil
	}

	if session.Expired(time.Now()) {
		p.logger.Infoln("HTTPProvider.CurrentSession : session expired, clearing")
		p.setSession(nil, true)
		return nil
	}

	return session
}

func (p *HTTPProvider) Subscribe(fn func(*Session)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

func (p *HTTPProvider) setSession(session *Session, notify bool) {
	p.mu.Lock()
	p.session = session

	var listeners []func(*Session)
	if notify {
		listeners = make([]func(*Session), 0, len(p.subscribers))
		for _, fn := range p.subscribers {
			listeners = append(listeners, fn)
		}
	}
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(session)
	}
}

func (p *HTTPProvider) credentialCall(ctx context.Context, operation, email, password string) (*Session, error) {
	endpoint := fmt.Sprintf("%s/v1/%s?key=%s", p.baseURL, operation, p.apiKey)

	payload, err := json.Marshal(identityRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := p.client.Do(request)
	if err != nil {
		p.logger.Warnf("HTTPProvider.credentialCall : %s failed: %s", operation, err)
		return nil, &errors.TransportError{Op: operation, Err: err}
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &errors.TransportError{Op: operation, Err: err}
	}

	if response.StatusCode != http.StatusOK {
		code := extractIdentityCode(body)
		p.logger.Infof("HTTPProvider.credentialCall : %s rejected with code %s", operation, code)
		return nil, &errors.IdentityError{Code: code}
	}

	var parsed identityResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &errors.TransportError{Op: operation, Err: err}
	}

	session := &Session{
		UID:   parsed.LocalID,
		Email: parsed.Email,
		Token: parsed.IDToken,
	}
	if seconds, err := strconv.Atoi(parsed.ExpiresIn); err == nil && seconds > 0 {
		session.ExpiresAt = time.Now().Add(time.Duration(seconds) * time.Second)
	}

	return session, nil
}

// Error payloads sometimes carry a trailing explanation after the code,
// e.g. "TOO_MANY_ATTEMPTS_TRY_LATER : retry later". Only the code matters.
func extractIdentityCode(body []byte) string {
	var parsed identityErrorResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Error.Message == "" {
		return ""
	}

	code := parsed.Error.Message
	if idx := strings.IndexAny(code, " :"); idx > 0 {
		code = code[:idx]
	}
	return code
}

func sessionFromToken(tokenString string) (*Session, error) {
	token, err := jwt.ParseNoVerify([]byte(tokenString))
	if err != nil {
		return nil, fmt.Errorf("Error parsing token: %s", err)
	}

	var claims map[string]interface{}
	if err := json.Unmarshal(token.Claims(), &claims); err != nil {
		return nil, fmt.Errorf("Error decoding token claims: %s", err)
	}

	session := &Session{Token: tokenString}

	if email, ok := claims["email"].(string); ok {
		session.Email = email
	}
	if uid, ok := claims["user_id"].(string); ok {
		session.UID = uid
	} else if sub, ok := claims["sub"].(string); ok {
		session.UID = sub
	}
	if exp, ok := claims["exp"].(float64); ok {
		session.ExpiresAt = time.Unix(int64(exp), 0)
	}

	return session, nil
}
