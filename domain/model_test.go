package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestNights(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"five full nights", date("2026-01-15"), date("2026-01-20"), 5},
		{"single night", date("2026-01-15"), date("2026-01-16"), 1},
		{"partial night rounds up", date("2026-01-15"), date("2026-01-15").Add(30 * time.Hour), 2},
		{"zero length stay", date("2026-01-15"), date("2026-01-15"), 0},
		{"end before start", date("2026-01-20"), date("2026-01-15"), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Nights(tc.start, tc.end))
		})
	}
}

func TestTotalPrice(t *testing.T) {
	nights := Nights(date("2026-01-15"), date("2026-01-20"))
	assert.Equal(t, 500.0, TotalPrice(nights, 100))
	assert.Equal(t, 0.0, TotalPrice(0, 100))
}

func TestAverageRating(t *testing.T) {
	reviews := []*Review{{Rating: 4}, {Rating: 5}, {Rating: 3}}
	assert.Equal(t, 4.0, AverageRating(reviews))

	reviews = []*Review{{Rating: 4}, {Rating: 5}}
	assert.Equal(t, 4.5, AverageRating(reviews))

	reviews = []*Review{{Rating: 5}, {Rating: 5}, {Rating: 4}}
	assert.Equal(t, 4.7, AverageRating(reviews))

	assert.Equal(t, 0.0, AverageRating(nil))
}

func TestNormalizeImageData(t *testing.T) {
	assert.Equal(t, "data:image/jpeg;base64,abc", NormalizeImageData("abc"))
	assert.Equal(t, "data:image/jpeg;base64,abc", NormalizeImageData("data:image/jpeg;base64,abc"))
	assert.Equal(t, "data:image/png;base64,abc", NormalizeImageData("data:image/png;base64,abc"))
	assert.Equal(t, "", NormalizeImageData(""))
}

func TestPropertyNormalizeDefaults(t *testing.T) {
	property := &Property{Description: "Loft", PropertyType: "Studio"}
	property.Normalize()
	assert.Equal(t, DefaultMaxPerson, property.MaxPerson)
	assert.Equal(t, StatusAvailable, property.RentalStatus)

	property = &Property{MaxPerson: 6, RentalStatus: "Rented"}
	property.Normalize()
	assert.Equal(t, 6, property.MaxPerson)
	assert.Equal(t, "Rented", property.RentalStatus)
}

func TestParseStayDates(t *testing.T) {
	start, end, err := ParseStayDates("2026-01-15", "2026-01-20")
	require.NoError(t, err)
	assert.Equal(t, 5, Nights(start, end))

	_, _, err = ParseStayDates("", "2026-01-20")
	require.Error(t, err)
	assert.Equal(t, "Start and end dates are required", err.Error())

	_, _, err = ParseStayDates("15/01/2026", "2026-01-20")
	require.Error(t, err)
	assert.Equal(t, "Dates must use the YYYY-MM-DD format", err.Error())

	_, _, err = ParseStayDates("2026-01-20", "2026-01-20")
	require.Error(t, err)
	assert.Equal(t, "End date must be after start date", err.Error())

	_, _, err = ParseStayDates("2026-01-20", "2026-01-15")
	require.Error(t, err)
}

func TestPropertyValidate(t *testing.T) {
	property := &Property{
		Description:   "Sea view apartment",
		PropertyType:  "Apartment",
		PricePerNight: 80,
		SellerEmail:   "seller@example.com",
	}
	assert.NoError(t, property.Validate())

	property.SellerEmail = "not-an-email"
	err := property.Validate()
	require.Error(t, err)
	assert.Equal(t, "Invalid email format.", err.Error())

	property.SellerEmail = "seller@example.com"
	property.Description = ""
	err = property.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestRentalValidate(t *testing.T) {
	rental := &Rental{
		PropertyID:     "p1",
		RenterEmail:    "renter@example.com",
		SellerEmail:    "seller@example.com",
		StartTime:      date("2026-01-15"),
		EndTime:        date("2026-01-20"),
		NumberOfPeople: 2,
	}
	assert.NoError(t, rental.Validate())

	rental.EndTime = rental.StartTime
	err := rental.Validate()
	require.Error(t, err)
	assert.Equal(t, "End date must be after start date", err.Error())

	rental.EndTime = date("2026-01-20")
	rental.NumberOfPeople = 0
	assert.Error(t, rental.Validate())
}

func TestReviewValidate(t *testing.T) {
	review := &Review{
		PropertyID:  "p1",
		RenterEmail: "renter@example.com",
		Rating:      5,
		Text:        "Great stay",
	}
	assert.NoError(t, review.Validate())

	review.Rating = 6
	err := review.Validate()
	require.Error(t, err)
	assert.Equal(t, "Rating must be between 1 and 5", err.Error())

	review.Rating = 0
	assert.Error(t, review.Validate())
}
