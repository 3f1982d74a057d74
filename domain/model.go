package domain

import (
	"encoding/json"
	"io"
	"math"
	"strings"
	"time"

	"github.com/kkratossdead/mobile-renting/errors"
)

type Property struct {
	ID            string  `json:"id"`
	Description   string  `json:"description" validate:"required"`
	PropertyType  string  `json:"propertyType" validate:"required"`
	PricePerNight float64 `json:"pricePerNight" validate:"gte=0"`
	MaxPerson     int     `json:"maxPerson"`
	SellerEmail   string  `json:"sellerEmail" validate:"required,email"`
	RentalStatus  string  `json:"rentalStatus"`
}

type PropertyImage struct {
	ID          string `json:"id"`
	PropertyID  string `json:"propertyId"`
	ImageBase64 string `json:"imageBase64"`
}

type Rental struct {
	ID             string    `json:"id"`
	PropertyID     string    `json:"propertyId" validate:"required"`
	RenterEmail    string    `json:"renterEmail" validate:"required,email"`
	SellerEmail    string    `json:"sellerEmail" validate:"required,email"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	NumberOfPeople int       `json:"numberOfPeople" validate:"gte=1"`
	TotalPrice     float64   `json:"totalPrice"`
}

type Review struct {
	ID          string `json:"id"`
	PropertyID  string `json:"propertyId" validate:"required"`
	RenterEmail string `json:"renterEmail" validate:"required,email"`
	Rating      int    `json:"rating" validate:"gte=1,lte=5"`
	Text        string `json:"text" validate:"required"`
}

type Notification struct {
	ID          string `json:"id"`
	SellerEmail string `json:"sellerEmail"`
	Text        string `json:"text"`
	Date        string `json:"date"`
}

// Credentials is the payload of the backend's register and login operations.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type Role string

const (
	Renter = "renter"
	Seller = "seller"
)

const StatusAvailable = "Available"

const DefaultMaxPerson = 2

var PropertyTypes = []string{"Apartment", "House", "Villa", "Studio", "Condo"}

type Properties []*Property
type PropertyImages []*PropertyImage
type Rentals []*Rental
type Reviews []*Review
type Notifications []*Notification

// Normalize fills the backend's implicit defaults so no caller has to.
func (p *Property) Normalize() {
	if p.MaxPerson <= 0 {
		p.MaxPerson = DefaultMaxPerson
	}
	if p.RentalStatus == "" {
		p.RentalStatus = StatusAvailable
	}
}

func (i *PropertyImage) Normalize() {
	i.ImageBase64 = NormalizeImageData(i.ImageBase64)
}

// NormalizeImageData applies the JPEG data-URI prefix exactly once. Payloads
// that already carry a data-URI scheme marker pass through untouched.
func NormalizeImageData(payload string) string {
	if payload == "" || strings.HasPrefix(payload, "data:") {
		return payload
	}
	return "data:image/jpeg;base64," + payload
}

const nightDuration = 24 * time.Hour

// Nights counts the billable nights of a stay, inclusive start and
// exclusive end, rounding partial nights up.
func Nights(start, end time.Time) int {
	stay := end.Sub(start)
	if stay <= 0 {
		return 0
	}
	return int(math.Ceil(float64(stay) / float64(nightDuration)))
}

// TotalPrice is the stay price computed client-side at booking time.
func TotalPrice(nights int, pricePerNight float64) float64 {
	return float64(nights) * pricePerNight
}

// AverageRating is the arithmetic mean of the given review ratings rounded
// to one decimal place, 0 when there are no reviews.
func AverageRating(reviews []*Review) float64 {
	if len(reviews) == 0 {
		return 0
	}

	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}

	average := float64(sum) / float64(len(reviews))
	return math.Round(average*10) / 10
}

const stayDateLayout = "2006-01-02"

// ParseStayDates parses YYYY-MM-DD stay boundaries and requires the end
// date to fall strictly after the start date.
func ParseStayDates(start, end string) (time.Time, time.Time, error) {
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, &ValidationError{Message: errors.EmptyStayDates}
	}

	startTime, err := time.Parse(stayDateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, &ValidationError{Message: errors.InvalidStayDateFormat}
	}

	endTime, err := time.Parse(stayDateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, &ValidationError{Message: errors.InvalidStayDateFormat}
	}

	if !endTime.After(startTime) {
		return time.Time{}, time.Time{}, &ValidationError{Message: errors.EndDateNotAfterStart}
	}

	return startTime, endTime, nil
}

func (p *Property) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(p)
}

func (p *Property) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(p)
}

func (o *Rental) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(o)
}

func (o *Rental) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(o)
}

func (o *Review) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(o)
}

func (o *Review) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(o)
}
