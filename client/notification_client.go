package client

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/kkratossdead/mobile-renting/domain"
)

// NotificationClient is read-only; notifications are produced by the
// backend when bookings land.
type NotificationClient struct {
	transport *Transport
	cb        *gobreaker.CircuitBreaker
}

func NewNotificationClient(transport *Transport, logger *logrus.Logger) *NotificationClient {
	return &NotificationClient{
		transport: transport,
		cb:        CircuitBreaker("notificationClient", logger),
	}
}

func (nc *NotificationClient) GetBySeller(ctx context.Context, email string) ([]*domain.Notification, error) {
	result, err := nc.cb.Execute(func() (interface{}, error) {
		return nc.transport.Get(ctx, "/notifications/seller/"+url.PathEscape(email))
	})
	if err != nil {
		return nil, err
	}

	raw, _ := result.(json.RawMessage)
	var notifications []*domain.Notification
	if err := decode(raw, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}
