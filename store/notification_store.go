package store

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kkratossdead/mobile-renting/client"
	"github.com/kkratossdead/mobile-renting/domain"
)

// NotificationStore holds the seller's notification feed.
type NotificationStore struct {
	notificationClient *client.NotificationClient
	logger             *logrus.Logger
	tracer             trace.Tracer

	mu            sync.Mutex
	generation    uint64
	notifications []*domain.Notification
	loading       bool
	err           string
}

func NewNotificationStore(notifications *client.NotificationClient, logger *logrus.Logger, tracer trace.Tracer) *NotificationStore {
	return &NotificationStore{
		notificationClient: notifications,
		logger:             logger,
		tracer:             tracer,
	}
}

func (s *NotificationStore) LoadBySeller(ctx context.Context, email string) error {
	ctx, span := s.tracer.Start(ctx, "NotificationStore.LoadBySeller")
	defer span.End()

	generation := s.begin()
	s.logger.Infoln("NotificationStore.LoadBySeller : loading notifications for", email)

	notifications, err := s.notificationClient.GetBySeller(ctx, email)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.mu.Lock()
		defer s.mu.Unlock()
		if generation == s.generation {
			s.err = err.Error()
			s.loading = false
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		s.logger.Infoln("NotificationStore.LoadBySeller : discarding stale fetch result")
		return nil
	}
	s.notifications = notifications
	s.loading = false
	return nil
}

func (s *NotificationStore) Notifications() []*domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	notifications := make([]*domain.Notification, len(s.notifications))
	copy(notifications, s.notifications)
	return notifications
}

func (s *NotificationStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *NotificationStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *NotificationStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

func (s *NotificationStore) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.loading = true
	s.err = ""
	return s.generation
}
