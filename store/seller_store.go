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

// SellerStore owns the seller dashboard state: the seller's own listings,
// their images, and booking notifications. Every mutation re-fetches the
// seller's collection from the backend instead of patching the cache.
type SellerStore struct {
	propertyClient     *client.PropertyClient
	imageClient        *client.ImageClient
	notificationClient *client.NotificationClient
	logger             *logrus.Logger
	tracer             trace.Tracer

	mu            sync.Mutex
	generation    uint64
	listings      []*domain.Property
	imageCache    map[string][]*domain.PropertyImage
	notifications []*domain.Notification
	loading       bool
	err           string
}

func NewSellerStore(properties *client.PropertyClient, images *client.ImageClient, notifications *client.NotificationClient, logger *logrus.Logger, tracer trace.Tracer) *SellerStore {
	return &SellerStore{
		propertyClient:     properties,
		imageClient:        images,
		notificationClient: notifications,
		logger:             logger,
		tracer:             tracer,
		imageCache:         make(map[string][]*domain.PropertyImage),
	}
}

// LoadSellerData fetches one seller's listings, then each listing's images
// sequentially with the same degrade-to-empty guard the feed fetch uses.
func (s *SellerStore) LoadSellerData(ctx context.Context, email string) error {
	ctx, span := s.tracer.Start(ctx, "SellerStore.LoadSellerData")
	defer span.End()

	generation := s.begin()
	s.logger.Infoln("SellerStore.LoadSellerData : loading listings for", email)

	err := s.reload(ctx, email, generation)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// reload performs the fetch half of every seller action: listings, then
// images. It honors the generation guard when writing back.
func (s *SellerStore) reload(ctx context.Context, email string, generation uint64) error {
	listings, err := s.propertyClient.GetBySeller(ctx, email)
	if err != nil {
		s.finishErr(generation, err)
		return err
	}

	imageMap := make(map[string][]*domain.PropertyImage, len(listings))
	for _, listing := range listings {
		images, err := s.imageClient.GetByProperty(ctx, listing.ID)
		if err != nil {
			s.logger.Warnf("SellerStore.reload : images for property %s unavailable: %s", listing.ID, err)
			images = nil
		}
		imageMap[listing.ID] = images
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		s.logger.Infoln("SellerStore.reload : discarding stale fetch result")
		return nil
	}
	s.listings = listings
	s.imageCache = imageMap
	s.loading = false
	return nil
}

// LoadNotifications refreshes the notification panel. It is a passive
// fetch: failures are logged, the cached notifications stay.
func (s *SellerStore) LoadNotifications(ctx context.Context, email string) error {
	ctx, span := s.tracer.Start(ctx, "SellerStore.LoadNotifications")
	defer span.End()

	notifications, err := s.notificationClient.GetBySeller(ctx, email)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warnf("SellerStore.LoadNotifications : %s", err)
		return err
	}

	s.mu.Lock()
	s.notifications = notifications
	s.mu.Unlock()

	return nil
}

// AddProperty creates the listing, uploads the optional cover image once
// the backend has assigned an id, then re-fetches the seller's data.
func (s *SellerStore) AddProperty(ctx context.Context, property *domain.Property, imageBase64 string) (*domain.Property, error) {
	ctx, span := s.tracer.Start(ctx, "SellerStore.AddProperty")
	defer span.End()

	if err := property.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.recordErr(err)
		return nil, err
	}

	generation := s.begin()
	s.logger.Infoln("SellerStore.AddProperty : adding property for", property.SellerEmail)

	created, err := s.propertyClient.Add(ctx, property)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.finishErr(generation, err)
		return nil, err
	}

	if imageBase64 != "" && created.ID != "" {
		if err := s.imageClient.Upload(ctx, created.ID, imageBase64); err != nil {
			span.SetStatus(codes.Error, err.Error())
			s.finishErr(generation, err)
			return nil, err
		}
	}

	if err := s.reload(ctx, property.SellerEmail, generation); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *SellerStore) UpdateProperty(ctx context.Context, id string, property *domain.Property, email string) error {
	ctx, span := s.tracer.Start(ctx, "SellerStore.UpdateProperty")
	defer span.End()

	if err := property.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.recordErr(err)
		return err
	}

	generation := s.begin()
	s.logger.Infoln("SellerStore.UpdateProperty : updating property", id)

	if err := s.propertyClient.Update(ctx, id, property); err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.finishErr(generation, err)
		return err
	}

	return s.reload(ctx, email, generation)
}

func (s *SellerStore) DeleteProperty(ctx context.Context, id, email string) error {
	ctx, span := s.tracer.Start(ctx, "SellerStore.DeleteProperty")
	defer span.End()

	generation := s.begin()
	s.logger.Infoln("SellerStore.DeleteProperty : deleting property", id)

	if err := s.propertyClient.Delete(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.finishErr(generation, err)
		return err
	}

	return s.reload(ctx, email, generation)
}

func (s *SellerStore) Listings() []*domain.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	listings := make([]*domain.Property, len(s.listings))
	copy(listings, s.listings)
	return listings
}

func (s *SellerStore) Images(propertyID string) []*domain.PropertyImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imageCache[propertyID]
}

func (s *SellerStore) Notifications() []*domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	notifications := make([]*domain.Notification, len(s.notifications))
	copy(notifications, s.notifications)
	return notifications
}

func (s *SellerStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *SellerStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *SellerStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

func (s *SellerStore) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.loading = true
	s.err = ""
	return s.generation
}

func (s *SellerStore) finishErr(generation uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return
	}
	s.err = err.Error()
	s.loading = false
}

func (s *SellerStore) recordErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err.Error()
}
