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

// RentalStore owns the renter's bookings and the review submissions made
// from the booking flow.
type RentalStore struct {
	rentalClient *client.RentalClient
	reviewClient *client.ReviewClient
	logger       *logrus.Logger
	tracer       trace.Tracer

	mu         sync.Mutex
	generation uint64
	rentals    []*domain.Rental
	loading    bool
	err        string
}

func NewRentalStore(rentals *client.RentalClient, reviews *client.ReviewClient, logger *logrus.Logger, tracer trace.Tracer) *RentalStore {
	return &RentalStore{
		rentalClient: rentals,
		reviewClient: reviews,
		logger:       logger,
		tracer:       tracer,
	}
}

func (s *RentalStore) LoadRentals(ctx context.Context, email string) error {
	ctx, span := s.tracer.Start(ctx, "RentalStore.LoadRentals")
	defer span.End()

	generation := s.begin()
	s.logger.Infoln("RentalStore.LoadRentals : loading rentals for", email)

	rentals, err := s.rentalClient.GetByRenter(ctx, email)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.finishErr(generation, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		s.logger.Infoln("RentalStore.LoadRentals : discarding stale fetch result")
		return nil
	}
	s.rentals = rentals
	s.loading = false
	return nil
}

// RentProperty validates the stay, computes the total client-side from the
// listing's nightly price, posts the booking, and re-fetches the renter's
// rentals. The computed total is what the backend stores; it does not
// recompute it.
func (s *RentalStore) RentProperty(ctx context.Context, rental *domain.Rental, pricePerNight float64) error {
	ctx, span := s.tracer.Start(ctx, "RentalStore.RentProperty")
	defer span.End()

	if err := rental.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.recordErr(err)
		return err
	}

	nights := domain.Nights(rental.StartTime, rental.EndTime)
	rental.TotalPrice = domain.TotalPrice(nights, pricePerNight)

	generation := s.begin()
	s.logger.Infof("RentalStore.RentProperty : booking property %s for %d nights, total %.2f", rental.PropertyID, nights, rental.TotalPrice)

	if err := s.rentalClient.Rent(ctx, rental); err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.finishErr(generation, err)
		return err
	}

	rentals, err := s.rentalClient.GetByRenter(ctx, rental.RenterEmail)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.finishErr(generation, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		s.logger.Infoln("RentalStore.RentProperty : discarding stale fetch result")
		return nil
	}
	s.rentals = rentals
	s.loading = false
	return nil
}

// RentPropertyDates books a stay from the YYYY-MM-DD strings a booking
// form collects, parsing and validating them before delegating.
func (s *RentalStore) RentPropertyDates(ctx context.Context, rental *domain.Rental, startDate, endDate string, pricePerNight float64) error {
	start, end, err := domain.ParseStayDates(startDate, endDate)
	if err != nil {
		s.recordErr(err)
		return err
	}

	rental.StartTime = start
	rental.EndTime = end
	return s.RentProperty(ctx, rental, pricePerNight)
}

func (s *RentalStore) AddReview(ctx context.Context, review *domain.Review) error {
	ctx, span := s.tracer.Start(ctx, "RentalStore.AddReview")
	defer span.End()

	if err := review.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.recordErr(err)
		return err
	}

	generation := s.begin()
	s.logger.Infoln("RentalStore.AddReview : adding review for property", review.PropertyID)

	if err := s.reviewClient.Add(ctx, review); err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.finishErr(generation, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation == s.generation {
		s.loading = false
	}
	return nil
}

func (s *RentalStore) Rentals() []*domain.Rental {
	s.mu.Lock()
	defer s.mu.Unlock()
	rentals := make([]*domain.Rental, len(s.rentals))
	copy(rentals, s.rentals)
	return rentals
}

func (s *RentalStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *RentalStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *RentalStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

func (s *RentalStore) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.loading = true
	s.err = ""
	return s.generation
}

func (s *RentalStore) finishErr(generation uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return
	}
	s.err = err.Error()
	s.loading = false
}

func (s *RentalStore) recordErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err.Error()
}
