package client

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/kkratossdead/mobile-renting/domain"
)

type ReviewClient struct {
	transport *Transport
	cb        *gobreaker.CircuitBreaker
}

func NewReviewClient(transport *Transport, logger *logrus.Logger) *ReviewClient {
	return &ReviewClient{
		transport: transport,
		cb:        CircuitBreaker("reviewClient", logger),
	}
}

func (rc *ReviewClient) GetAll(ctx context.Context) ([]*domain.Review, error) {
	result, err := rc.cb.Execute(func() (interface{}, error) {
		return rc.transport.Get(ctx, "/review")
	})
	if err != nil {
		return nil, err
	}

	raw, _ := result.(json.RawMessage)
	var reviews []*domain.Review
	if err := decode(raw, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (rc *ReviewClient) GetByProperty(ctx context.Context, propertyID string) ([]*domain.Review, error) {
	result, err := rc.cb.Execute(func() (interface{}, error) {
		return rc.transport.Get(ctx, "/review/property/"+url.PathEscape(propertyID))
	})
	if err != nil {
		return nil, err
	}

	raw, _ := result.(json.RawMessage)
	var reviews []*domain.Review
	if err := decode(raw, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (rc *ReviewClient) Add(ctx context.Context, review *domain.Review) error {
	_, err := rc.cb.Execute(func() (interface{}, error) {
		return rc.transport.Post(ctx, "/review/add", review)
	})
	return err
}
