package store

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkratossdead/mobile-renting/domain"
)

func newRentalStore(backend *rentingBackend) *RentalStore {
	return NewRentalStore(backend.rentalClient(), backend.reviewClient(), testLogger(), testTracer())
}

func stayDate(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func bookableRental() *domain.Rental {
	return &domain.Rental{
		PropertyID:     "p1",
		RenterEmail:    "renter@example.com",
		SellerEmail:    "seller@example.com",
		StartTime:      stayDate("2026-01-15"),
		EndTime:        stayDate("2026-01-20"),
		NumberOfPeople: 2,
	}
}

func TestRentalStoreLoadRentals(t *testing.T) {
	backend := newRentingBackend(t)

	backend.router.HandleFunc("/rental/renter/{email}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "renter@example.com", mux.Vars(r)["email"])
		respondJSON(t, w, []map[string]interface{}{
			{"id": "r1", "propertyId": "p1", "totalPrice": 500},
		})
	}).Methods(http.MethodGet)

	store := newRentalStore(backend)

	require.NoError(t, store.LoadRentals(context.Background(), "renter@example.com"))
	assert.False(t, store.Loading())

	rentals := store.Rentals()
	require.Len(t, rentals, 1)
	assert.Equal(t, 500.0, rentals[0].TotalPrice)
}

func TestRentalStoreRentComputesTotalAndRefetches(t *testing.T) {
	backend := newRentingBackend(t)

	var booked domain.Rental
	backend.router.HandleFunc("/rental/rent", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, booked.FromJSON(r.Body))
		w.WriteHeader(http.StatusCreated)
	}).Methods(http.MethodPost)
	backend.router.HandleFunc("/rental/renter/{email}", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, []map[string]interface{}{
			{"id": "r1", "propertyId": booked.PropertyID, "totalPrice": booked.TotalPrice},
		})
	}).Methods(http.MethodGet)

	store := newRentalStore(backend)

	require.NoError(t, store.RentProperty(context.Background(), bookableRental(), 100))

	// 5 nights at 100 per night.
	assert.Equal(t, 500.0, booked.TotalPrice)

	rentals := store.Rentals()
	require.Len(t, rentals, 1)
	assert.Equal(t, 500.0, rentals[0].TotalPrice)
	assert.False(t, store.Loading())
}

func TestRentalStoreRentValidationStopsBeforePost(t *testing.T) {
	backend := newRentingBackend(t)

	posted := false
	backend.router.HandleFunc("/rental/rent", func(w http.ResponseWriter, r *http.Request) {
		posted = true
	}).Methods(http.MethodPost)

	store := newRentalStore(backend)

	rental := bookableRental()
	rental.EndTime = rental.StartTime

	err := store.RentProperty(context.Background(), rental, 100)
	require.Error(t, err)
	assert.False(t, posted)
	assert.Equal(t, "End date must be after start date", store.Err())

	store.ClearError()
	assert.Empty(t, store.Err())
}

func TestRentalStoreRentPropertyDates(t *testing.T) {
	backend := newRentingBackend(t)

	var booked domain.Rental
	backend.router.HandleFunc("/rental/rent", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, booked.FromJSON(r.Body))
		w.WriteHeader(http.StatusCreated)
	}).Methods(http.MethodPost)
	backend.router.HandleFunc("/rental/renter/{email}", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, []map[string]interface{}{})
	}).Methods(http.MethodGet)

	store := newRentalStore(backend)

	rental := bookableRental()
	rental.StartTime = time.Time{}
	rental.EndTime = time.Time{}

	require.NoError(t, store.RentPropertyDates(context.Background(), rental, "2026-01-15", "2026-01-20", 100))
	assert.Equal(t, 500.0, booked.TotalPrice)

	err := store.RentPropertyDates(context.Background(), bookableRental(), "2026-01-20", "2026-01-15", 100)
	require.Error(t, err)
	assert.Equal(t, "End date must be after start date", store.Err())
}

func TestRentalStoreRentBackendRejection(t *testing.T) {
	backend := newRentingBackend(t)

	backend.router.HandleFunc("/rental/rent", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		respondJSON(t, w, map[string]string{"message": "Property is already rented for those dates"})
	}).Methods(http.MethodPost)

	store := newRentalStore(backend)

	err := store.RentProperty(context.Background(), bookableRental(), 100)
	require.Error(t, err)
	assert.Equal(t, "Property is already rented for those dates", store.Err())
	assert.False(t, store.Loading())
	assert.Empty(t, store.Rentals())
}

func TestRentalStoreAddReview(t *testing.T) {
	backend := newRentingBackend(t)

	var added domain.Review
	backend.router.HandleFunc("/review/add", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, added.FromJSON(r.Body))
		w.WriteHeader(http.StatusCreated)
	}).Methods(http.MethodPost)

	store := newRentalStore(backend)

	review := &domain.Review{
		PropertyID:  "p1",
		RenterEmail: "renter@example.com",
		Rating:      5,
		Text:        "Great stay",
	}
	require.NoError(t, store.AddReview(context.Background(), review))
	assert.Equal(t, "p1", added.PropertyID)
	assert.Equal(t, 5, added.Rating)
}

func TestRentalStoreAddReviewInvalidRating(t *testing.T) {
	backend := newRentingBackend(t)

	store := newRentalStore(backend)

	review := &domain.Review{
		PropertyID:  "p1",
		RenterEmail: "renter@example.com",
		Rating:      8,
		Text:        "Great stay",
	}
	err := store.AddReview(context.Background(), review)
	require.Error(t, err)
	assert.Equal(t, "Rating must be between 1 and 5", store.Err())
}
