package domain

import (
	"github.com/go-playground/validator/v10"

	"github.com/kkratossdead/mobile-renting/errors"
)

type ValidationError struct {
	Message string `json:"message"`
}

func (v *ValidationError) Error() string {
	return v.Message
}

// Validate checks the fields a listing needs before it is sent to the
// backend. The resource clients never validate; this runs at the store
// boundary, before the request is built.
func (p *Property) Validate() error {
	validate := validator.New()

	if err := validate.Struct(p); err != nil {
		return &ValidationError{Message: validationMessage(err)}
	}

	return nil
}

func (o *Rental) Validate() error {
	validate := validator.New()
	validate.RegisterStructValidation(rentalStructLevel, Rental{})

	if err := validate.Struct(o); err != nil {
		return &ValidationError{Message: validationMessage(err)}
	}

	return nil
}

// End must fall strictly after start; a zero-length stay is not bookable.
func rentalStructLevel(sl validator.StructLevel) {
	rental := sl.Current().Interface().(Rental)

	if rental.StartTime.IsZero() || rental.EndTime.IsZero() {
		sl.ReportError(rental.StartTime, "StartTime", "startTime", "required", "")
		return
	}

	if !rental.EndTime.After(rental.StartTime) {
		sl.ReportError(rental.EndTime, "EndTime", "endTime", "gtstart", "")
	}
}

func (o *Review) Validate() error {
	validate := validator.New()

	if err := validate.Struct(o); err != nil {
		return &ValidationError{Message: validationMessage(err)}
	}

	return nil
}

func validationMessage(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return errors.InvalidRequestFormat
	}

	fieldError := validationErrors[0]
	switch fieldError.Tag() {
	case "required":
		return fieldError.Field() + " cannot be empty"
	case "email":
		return errors.InvalidEmailFormat
	case "gtstart":
		return errors.EndDateNotAfterStart
	case "gte", "lte":
		if fieldError.Field() == "Rating" {
			return "Rating must be between 1 and 5"
		}
		return "Invalid value for " + fieldError.Field()
	default:
		return errors.InvalidRequestFormat
	}
}
