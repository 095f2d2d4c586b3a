package services

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/mdsetiawan/facility-directory/pkg/errors"
)

var validate = validator.New()

// FacilityInput carries the client-supplied fields of a facility. Fields are
// declared in the order violations must be reported.
type FacilityInput struct {
	Name          string   `json:"name" validate:"required"`
	OpenTime      string   `json:"openTime" validate:"required"`
	CloseTime     string   `json:"closeTime" validate:"required"`
	Address       string   `json:"address" validate:"required"`
	Latitude      *float64 `json:"lat" validate:"required"`
	Longitude     *float64 `json:"lng" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	TypeID        string   `json:"typeId" validate:"required"`
	SubFacilities []string `json:"subFacilities"`
}

// FacilityTypeInput carries the client-supplied fields of a facility type
type FacilityTypeInput struct {
	Name                 string   `json:"name" validate:"required"`
	AllowedSubFacilities []string `json:"allowedSubFacilities"`
}

// ReviewInput carries the client-supplied fields of a review
type ReviewInput struct {
	Comment string `json:"comment" validate:"required"`
}

// UserInput carries the client-supplied fields of a user account
type UserInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

var validationMessages = map[string]string{
	"Name":        "name is required",
	"OpenTime":    "openTime is required",
	"CloseTime":   "closeTime is required",
	"Address":     "address is required",
	"Latitude":    "lat is required",
	"Longitude":   "lng is required",
	"Description": "description is required",
	"TypeID":      "typeId is required",
	"Username":    "username is required",
	"Comment":     "comment is required",
}

// checkInput validates a request struct and reports the first violation in
// field declaration order.
func checkInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return apperrors.NewInternalError("failed to validate input", err)
	}

	first := errs[0]
	switch first.Tag() {
	case "email":
		return apperrors.NewValidationError("email must be a valid address")
	case "min":
		return apperrors.NewValidationError(fmt.Sprintf("%s must be at least %s characters", jsonName(first.Field()), first.Param()))
	}

	if msg, ok := validationMessages[first.Field()]; ok {
		return apperrors.NewValidationError(msg)
	}
	return apperrors.NewValidationError(fmt.Sprintf("%s is required", jsonName(first.Field())))
}

func jsonName(field string) string {
	switch field {
	case "Email":
		return "email"
	case "Password":
		return "password"
	default:
		return field
	}
}
