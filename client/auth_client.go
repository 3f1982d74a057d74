package client

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/kkratossdead/mobile-renting/domain"
)

// AuthClient covers the backend's shadow account records. The identity
// provider owns the real credentials; these calls only keep the backend
// in sync.
type AuthClient struct {
	transport *Transport
	cb        *gobreaker.CircuitBreaker
}

func NewAuthClient(transport *Transport, logger *logrus.Logger) *AuthClient {
	return &AuthClient{
		transport: transport,
		cb:        CircuitBreaker("authClient", logger),
	}
}

func (ac *AuthClient) Register(ctx context.Context, email, password, role string) error {
	credentials := domain.Credentials{
		Email:    email,
		Password: password,
		Role:     role,
	}

	_, err := ac.cb.Execute(func() (interface{}, error) {
		return ac.transport.Post(ctx, "/auth/register", credentials)
	})
	return err
}

func (ac *AuthClient) Login(ctx context.Context, email, password string) error {
	credentials := domain.Credentials{
		Email:    email,
		Password: password,
	}

	_, err := ac.cb.Execute(func() (interface{}, error) {
		return ac.transport.Post(ctx, "/auth/login", credentials)
	})
	return err
}
