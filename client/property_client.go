package client

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/kkratossdead/mobile-renting/domain"
)

type PropertyClient struct {
	transport *Transport
	cb        *gobreaker.CircuitBreaker
}

func NewPropertyClient(transport *Transport, logger *logrus.Logger) *PropertyClient {
	return &PropertyClient{
		transport: transport,
		cb:        CircuitBreaker("propertyClient", logger),
	}
}

func (pc *PropertyClient) GetAll(ctx context.Context) ([]*domain.Property, error) {
	result, err := pc.cb.Execute(func() (interface{}, error) {
		return pc.transport.Get(ctx, "/property")
	})
	if err != nil {
		return nil, err
	}

	raw, _ := result.(json.RawMessage)
	var properties []*domain.Property
	if err := decode(raw, &properties); err != nil {
		return nil, err
	}

	for _, property := range properties {
		property.Normalize()
	}
	return properties, nil
}

func (pc *PropertyClient) GetBySeller(ctx context.Context, email string) ([]*domain.Property, error) {
	result, err := pc.cb.Execute(func() (interface{}, error) {
		return pc.transport.Get(ctx, "/property/seller/"+url.PathEscape(email))
	})
	if err != nil {
		return nil, err
	}

	raw, _ := result.(json.RawMessage)
	var properties []*domain.Property
	if err := decode(raw, &properties); err != nil {
		return nil, err
	}

	for _, property := range properties {
		property.Normalize()
	}
	return properties, nil
}

func (pc *PropertyClient) Add(ctx context.Context, property *domain.Property) (*domain.Property, error) {
	result, err := pc.cb.Execute(func() (interface{}, error) {
		return pc.transport.Post(ctx, "/property/add", property)
	})
	if err != nil {
		return nil, err
	}

	raw, _ := result.(json.RawMessage)
	var created domain.Property
	if err := decode(raw, &created); err != nil {
		return nil, err
	}

	created.Normalize()
	return &created, nil
}

func (pc *PropertyClient) Update(ctx context.Context, id string, property *domain.Property) error {
	_, err := pc.cb.Execute(func() (interface{}, error) {
		return pc.transport.Put(ctx, "/property/"+url.PathEscape(id), property)
	})
	return err
}

func (pc *PropertyClient) Delete(ctx context.Context, id string) error {
	_, err := pc.cb.Execute(func() (interface{}, error) {
		return pc.transport.Delete(ctx, "/property/"+url.PathEscape(id))
	})
	return err
}
