// Package validation checks apply, register and login payloads. Field rules
// live in struct tags on the DTOs; rules that span fields or depend on the
// current time are registered here as struct-level validations.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/movementpass/public-api/internal/api/dto"
	"github.com/movementpass/public-api/internal/clock"
)

// ApplyWindow is how far ahead a pass may start.
const ApplyWindow = 24 * time.Hour

// MinimumAge is the youngest an applicant may register.
const MinimumAge = 18

var mobilePattern = regexp.MustCompile(`^01[3-9]\d{8}$`)

// Errors maps json field names to their failure messages.
type Errors map[string][]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e[field], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Details converts the errors for a DomainError payload.
func (e Errors) Details() map[string]any {
	out := make(map[string]any, len(e))
	for field, msgs := range e {
		out[field] = msgs
	}
	return out
}

// Validator validates request DTOs against the injected clock.
type Validator struct {
	validate *validator.Validate
	clock    clock.Clock
}

// New builds a Validator.
func New(clk clock.Clock) *Validator {
	v := &Validator{validate: validator.New(), clock: clk}

	v.validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.validate.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	v.validate.RegisterStructValidation(v.applyRules, dto.ApplyRequest{})
	v.validate.RegisterStructValidation(v.registerRules, dto.RegisterRequest{})

	return v
}

// Struct validates s and returns Errors when any rule fails.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := Errors{}
	for _, fe := range fieldErrs {
		out[fe.Field()] = append(out[fe.Field()], message(fe))
	}
	return out
}

func (v *Validator) applyRules(sl validator.StructLevel) {
	req := sl.Current().Interface().(dto.ApplyRequest)

	if !req.DateTime.IsZero() {
		now := v.clock.Now()
		if req.DateTime.Before(now) {
			sl.ReportError(req.DateTime, "dateTime", "DateTime", "future", "")
		} else if req.DateTime.After(now.Add(ApplyWindow)) {
			sl.ReportError(req.DateTime, "dateTime", "DateTime", "within24h", "")
		}
	}

	if !req.IncludeVehicle {
		return
	}
	if strings.TrimSpace(req.VehicleNo) == "" {
		sl.ReportError(req.VehicleNo, "vehicleNo", "VehicleNo", "required_with_vehicle", "")
	}
	if req.SelfDriven {
		return
	}
	if strings.TrimSpace(req.DriverName) == "" {
		sl.ReportError(req.DriverName, "driverName", "DriverName", "required_with_driver", "")
	}
	if strings.TrimSpace(req.DriverLicenseNo) == "" {
		sl.ReportError(req.DriverLicenseNo, "driverLicenseNo", "DriverLicenseNo", "required_with_driver", "")
	}
}

func (v *Validator) registerRules(sl validator.StructLevel) {
	req := sl.Current().Interface().(dto.RegisterRequest)

	if req.DateOfBirth.IsZero() {
		sl.ReportError(req.DateOfBirth, "dateOfBirth", "DateOfBirth", "required", "")
		return
	}
	if AgeAt(req.DateOfBirth.Time, v.clock.Now()) < MinimumAge {
		sl.ReportError(req.DateOfBirth, "dateOfBirth", "DateOfBirth", "adult", "")
	}
}

// AgeAt returns completed years between birth and at.
func AgeAt(birth, at time.Time) int {
	birth, at = birth.UTC(), at.UTC()
	years := at.Year() - birth.Year()
	if at.Month() < birth.Month() || (at.Month() == birth.Month() && at.Day() < birth.Day()) {
		years--
	}
	return years
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be %s characters", fe.Param())
	case "numeric":
		return "must contain digits only"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "url":
		return "must be a valid url"
	case "mobile":
		return "must be a valid mobile phone number"
	case "future":
		return "must not be in the past"
	case "within24h":
		return "must be within the next 24 hours"
	case "required_with_vehicle":
		return "is required when a vehicle is included"
	case "required_with_driver":
		return "is required when the vehicle is not self driven"
	case "adult":
		return fmt.Sprintf("age must be %d or over", MinimumAge)
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}
