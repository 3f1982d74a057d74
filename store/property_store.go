package store

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kkratossdead/mobile-renting/client"
	"github.com/kkratossdead/mobile-renting/domain"
)

// PropertyStore caches the renter-facing listing feed: every listing, its
// images, and lazily loaded reviews. Caches are transient; nothing here
// survives a restart.
type PropertyStore struct {
	properties *client.PropertyClient
	images     *client.ImageClient
	reviews    *client.ReviewClient
	logger     *logrus.Logger
	tracer     trace.Tracer

	mu         sync.Mutex
	generation uint64
	feed       []*domain.Property
	imageCache map[string][]*domain.PropertyImage
	reviewMap  map[string][]*domain.Review
	loading    bool
	err        string
}

func NewPropertyStore(properties *client.PropertyClient, images *client.ImageClient, reviews *client.ReviewClient, logger *logrus.Logger, tracer trace.Tracer) *PropertyStore {
	return &PropertyStore{
		properties: properties,
		images:     images,
		reviews:    reviews,
		logger:     logger,
		tracer:     tracer,
		imageCache: make(map[string][]*domain.PropertyImage),
		reviewMap:  make(map[string][]*domain.Review),
	}
}

// LoadAll fetches every listing, then each listing's images one request at
// a time. A single image fetch failing degrades that one listing to no
// images; it never aborts the feed.
func (s *PropertyStore) LoadAll(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "PropertyStore.LoadAll")
	defer span.End()

	generation := s.begin()
	s.logger.Infoln("PropertyStore.LoadAll : loading all properties")

	feed, err := s.properties.GetAll(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.finishErr(generation, err)
		return err
	}

	imageMap := make(map[string][]*domain.PropertyImage, len(feed))
	for _, property := range feed {
		images, err := s.images.GetByProperty(ctx, property.ID)
		if err != nil {
			s.logger.Warnf("PropertyStore.LoadAll : images for property %s unavailable: %s", property.ID, err)
			images = nil
		}
		imageMap[property.ID] = images
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		s.logger.Infoln("PropertyStore.LoadAll : discarding stale fetch result")
		return nil
	}
	s.feed = feed
	s.imageCache = imageMap
	s.loading = false
	return nil
}

// LoadReviews fetches one listing's reviews into the cache. Failures leave
// the cache untouched; the caller decides whether the error matters.
func (s *PropertyStore) LoadReviews(ctx context.Context, propertyID string) ([]*domain.Review, error) {
	ctx, span := s.tracer.Start(ctx, "PropertyStore.LoadReviews")
	defer span.End()

	reviews, err := s.reviews.GetByProperty(ctx, propertyID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warnf("PropertyStore.LoadReviews : reviews for property %s unavailable: %s", propertyID, err)
		return nil, err
	}

	s.mu.Lock()
	s.reviewMap[propertyID] = reviews
	s.mu.Unlock()

	return reviews, nil
}

// AverageRating derives the mean rating from the cached reviews, 0 when
// none are cached. It never fetches.
func (s *PropertyStore) AverageRating(propertyID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.AverageRating(s.reviewMap[propertyID])
}

// Filter narrows the cached feed by a free-text query over description and
// type, and by an upper price bound when maxPrice is positive.
func (s *PropertyStore) Filter(query string, maxPrice float64) []*domain.Property {
	s.mu.Lock()
	defer s.mu.Unlock()

	query = strings.ToLower(strings.TrimSpace(query))

	matched := make([]*domain.Property, 0, len(s.feed))
	for _, property := range s.feed {
		if maxPrice > 0 && property.PricePerNight > maxPrice {
			continue
		}
		if query != "" {
			description := strings.ToLower(property.Description)
			propertyType := strings.ToLower(property.PropertyType)
			if !strings.Contains(description, query) && !strings.Contains(propertyType, query) {
				continue
			}
		}
		matched = append(matched, property)
	}
	return matched
}

func (s *PropertyStore) Properties() []*domain.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed := make([]*domain.Property, len(s.feed))
	copy(feed, s.feed)
	return feed
}

func (s *PropertyStore) Images(propertyID string) []*domain.PropertyImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imageCache[propertyID]
}

func (s *PropertyStore) Reviews(propertyID string) []*domain.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviewMap[propertyID]
}

func (s *PropertyStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *PropertyStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *PropertyStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// begin starts a new action generation. Results from actions begun earlier
// are discarded on arrival, so a late response never overwrites newer
// cache state.
func (s *PropertyStore) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.loading = true
	s.err = ""
	return s.generation
}

func (s *PropertyStore) finishErr(generation uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return
	}
	s.err = err.Error()
	s.loading = false
}
