// Package validation checks user input before it is sent to the backend.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/core/schedule"
)

// MinMembers is the smallest group that can spin and run rounds
const MinMembers = 2

// RegisterRequest is the payload for creating an account
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the payload for signing in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest starts the OTP reset flow
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPRequest checks the OTP sent by email
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// ResetPasswordRequest completes the reset flow
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// CreateGroupRequest is the payload for a new group
type CreateGroupRequest struct {
	Name            string  `json:"name" validate:"required,min=2,max=60"`
	MemberCount     int     `json:"memberCount" validate:"min=2,max=50"`
	AmountPerPerson float64 `json:"amountPerPerson" validate:"gt=0,lte=1000000"`
}

// NewParticipant is a participant to add, by name or by email
type NewParticipant struct {
	Name  string `json:"name,omitempty" validate:"required_without=Email,max=60"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// AddParticipantsRequest adds one or more participants to a group
type AddParticipantsRequest struct {
	Participants []NewParticipant `json:"participants" validate:"required,min=1,dive"`
}

// ScheduleRequest sets the collection schedule
type ScheduleRequest struct {
	AmountPerPerson float64         `json:"amountPerPerson" validate:"gt=0,lte=1000000"`
	Frequency       model.Frequency `json:"frequency" validate:"required,oneof=weekly biweekly monthly"`
	CollectionDate  string          `json:"collectionDate" validate:"required,collectionday"`
}

// PaymentStatusRequest sets a participant's payment status for the round
type PaymentStatusRequest struct {
	IsPaid bool `json:"isPaid"`
}

// ShareRequest optionally names someone to email the share link to
type ShareRequest struct {
	Email string `validate:"omitempty,email"`
}

// FieldError is one failed field
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned for input that must be fixed locally before
// any request is made
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

// IsValidationError reports whether err is a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("collectionday", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		if day, ok := model.CollectionDay(s).DayOfMonth(); ok {
			return day >= 1 && day <= 31
		}
		_, ok := schedule.ParseWeekday(s)
		return ok
	})
}

// Struct validates any of the request types in this package
func Struct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation failed: %w", err)
	}

	ve := &ValidationError{}
	for _, fe := range fieldErrs {
		ve.Fields = append(ve.Fields, FieldError{
			Field:   fe.Field(),
			Message: describe(fe),
		})
	}
	return ve
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must contain digits only", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "collectionday":
		return fmt.Sprintf("%s must be a day of the month (1-31) or a weekday", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// CheckSchedule validates the schedule request and that the collection day
// suits the frequency
func CheckSchedule(req ScheduleRequest) error {
	if err := Struct(req); err != nil {
		return err
	}
	_, isDay := model.CollectionDay(req.CollectionDate).DayOfMonth()
	if req.Frequency == model.FrequencyMonthly && !isDay {
		return &ValidationError{Fields: []FieldError{{Field: "CollectionDate", Message: "monthly groups collect on a day of the month"}}}
	}
	if req.Frequency != model.FrequencyMonthly && isDay {
		return &ValidationError{Fields: []FieldError{{Field: "CollectionDate", Message: "weekly groups collect on a weekday"}}}
	}
	return nil
}
