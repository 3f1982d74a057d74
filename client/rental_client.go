package client

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/kkratossdead/mobile-renting/domain"
)

type RentalClient struct {
	transport *Transport
	cb        *gobreaker.CircuitBreaker
}

func NewRentalClient(transport *Transport, logger *logrus.Logger) *RentalClient {
	return &RentalClient{
		transport: transport,
		cb:        CircuitBreaker("rentalClient", logger),
	}
}

func (rc *RentalClient) Rent(ctx context.Context, rental *domain.Rental) error {
	_, err := rc.cb.Execute(func() (interface{}, error) {
		return rc.transport.Post(ctx, "/rental/rent", rental)
	})
	return err
}

func (rc *RentalClient) GetByRenter(ctx context.Context, email string) ([]*domain.Rental, error) {
	result, err := rc.cb.Execute(func() (interface{}, error) {
		return rc.transport.Get(ctx, "/rental/renter/"+url.PathEscape(email))
	})
	if err != nil {
		return nil, err
	}

	raw, _ := result.(json.RawMessage)
	var rentals []*domain.Rental
	if err := decode(raw, &rentals); err != nil {
		return nil, err
	}
	return rentals, nil
}
