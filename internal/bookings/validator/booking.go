package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"salonbook/pkg/clock"
	"salonbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

const (
	RuleOwnerRequired     = "owner_required"
	RuleInvalidDate       = "invalid_date"
	RuleInvalidTime       = "invalid_time"
	RuleServicesRequired  = "services_required"
	RuleServicesDuplicate = "services_duplicate"
	RuleServiceIDInvalid  = "service_id_invalid"
	RuleInPast            = "in_past"
)

type ValidationError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// Details renders the error as AppError details.
func (v *ValidationError) Details() map[string]any {
	return map[string]any{"field": v.Field, "rule": v.Rule}
}

// BookingValidator checks a booking request structurally. It never touches
// the store; service existence is the store's concern.
type BookingValidator struct {
	validate *validator.Validate
	clock    *clock.Normalizer
}

func NewBookingValidator(n *clock.Normalizer) *BookingValidator {
	return &BookingValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		clock:    n,
	}
}

// Validate applies the rules in order and returns the first failure as a
// *ValidationError.
func (v *BookingValidator) Validate(req *model.CreateBookingRequest, now time.Time) error {
	if strings.TrimSpace(req.UserProfile.UserID) == "" {
		return &ValidationError{Field: "userProfile.userId", Rule: RuleOwnerRequired, Message: "owner identity is required"}
	}

	if _, _, _, err := clock.ParseDate(req.Date); err != nil {
		return &ValidationError{Field: "date", Rule: RuleInvalidDate, Message: "date must be a real calendar date in YYYY-MM-DD format"}
	}

	if _, _, err := clock.ParseClock(req.Time); err != nil {
		return &ValidationError{Field: "time", Rule: RuleInvalidTime, Message: "time must be HH:MM with hour 0-23 and minute 0-59"}
	}

	if err := v.validate.Var(req.ServiceIDs, "required,min=1"); err != nil {
		return &ValidationError{Field: "serviceIds", Rule: RuleServicesRequired, Message: "at least one service is required"}
	}
	if err := v.validate.Var(req.ServiceIDs, "unique"); err != nil {
		return &ValidationError{Field: "serviceIds", Rule: RuleServicesDuplicate, Message: "service ids must not repeat"}
	}
	if err := v.validate.Var(req.ServiceIDs, "dive,mongodb"); err != nil {
		return &ValidationError{Field: "serviceIds", Rule: RuleServiceIDInvalid, Message: invalidIDMessage(err)}
	}

	instant, err := v.clock.ToAbsolute(req.Date, req.Time)
	if err != nil {
		// Well-formed but nonexistent wall time, e.g. inside a DST gap.
		return &ValidationError{Field: "time", Rule: RuleInvalidTime, Message: err.Error()}
	}
	if instant.Before(now) {
		return &ValidationError{Field: "time", Rule: RuleInPast, Message: "requested time is in the past"}
	}

	return nil
}

func invalidIDMessage(err error) string {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return fmt.Sprintf("service id %q is not a valid identifier", errs[0].Value())
	}
	return "service ids must be 24-character hex identifiers"
}
