package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/warp/campus-ledger/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so clients can match them to inputs.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeRequest reads a JSON body into dst and runs struct validation.
func decodeRequest(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return validateRequest(dst)
}

// validateRequest converts validator failures into a domain.ValidationError.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate request: %w", err)
	}
	verr := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe))
	}
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "datetime":
		return "must match " + fe.Param()
	}
	return "is invalid"
}

// parseDate reads a YYYY-MM-DD value already shape-checked by the validator.
func parseDate(verr *domain.ValidationError, field, s string) domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		verr.Add(field, "must be a date (YYYY-MM-DD)")
	}
	return d
}

func parseClock(verr *domain.ValidationError, field, s string) *domain.TimeOfDay {
	t, err := domain.ParseOptionalTimeOfDay(s)
	if err != nil {
		verr.Add(field, "must be a time (HH:MM)")
		return nil
	}
	return t
}
