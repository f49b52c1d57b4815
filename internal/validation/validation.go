// Package validation holds the single set of field rules shared by the
// registration and contact services. Every rule violation is reported as a
// FieldError with a message suitable for direct display.
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"reflect"
	"regexp"
	"strings"

	"github.com/biter777/countries"
	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

var (
	// emailPattern is the local@domain.tld shape accepted for contact senders.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// phonePattern accepts digits with common separators and an optional leading +.
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-().]{7,20}$`)
)

// FieldError describes one rule violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Error is returned when one or more fields fail validation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	return "validation failed: " + e.Message()
}

// Message joins all violation messages into one human-readable sentence list.
func (e *Error) Message() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, ", ")
}

// Map returns the violations keyed by field name.
func (e *Error) Map() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}
	return out
}

// IsValidationError reports whether err carries field violations.
func IsValidationError(err error) bool {
	var verr *Error
	return errors.As(err, &verr)
}

// Validator wraps a configured go-playground validator. It is safe for
// concurrent use.
type Validator struct {
	validate *validator.Validate
	region   string
}

// New builds a Validator. defaultRegion is the ISO 3166 region used to parse
// phone numbers written without an international prefix.
func New(defaultRegion string) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if defaultRegion == "" {
		defaultRegion = "US"
	}
	val := &Validator{validate: v, region: strings.ToUpper(defaultRegion)}

	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "contactemail", func(fl validator.FieldLevel) bool {
		return isDeliverableAddress(fl.Field().String())
	})
	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "possiblephone", val.isPossiblePhone)
	mustRegister(v, "country", func(fl validator.FieldLevel) bool {
		return countries.ByName(strings.TrimSpace(fl.Field().String())) != countries.Unknown
	})

	return val
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// isDeliverableAddress accepts a bare address that an outgoing mail header
// can carry unchanged, such as a Reply-To.
func isDeliverableAddress(value string) bool {
	if !emailPattern.MatchString(value) {
		return false
	}
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value
}

// isPossiblePhone checks international numbers strictly. A national-format
// number may belong to any country, so when it is not possible in the default
// region it only has to look like a phone number.
func (v *Validator) isPossiblePhone(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	num, err := phonenumbers.Parse(value, v.region)
	if err == nil && phonenumbers.IsPossibleNumber(num) {
		return true
	}
	if strings.HasPrefix(value, "+") {
		return false
	}
	return phonePattern.MatchString(value)
}

// Struct validates s and converts rule failures into *Error. Errors that are
// not rule failures (for example a nil or non-struct argument) are returned
// unchanged.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	typ := reflect.TypeOf(s)
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: message(labelFor(typ, fe), fe),
		})
	}
	return out
}

// labelFor prefers a `label` struct tag and falls back to the JSON field name.
func labelFor(typ reflect.Type, fe validator.FieldError) string {
	if typ.Kind() == reflect.Struct {
		if sf, ok := typ.FieldByName(fe.StructField()); ok {
			if label := sf.Tag.Get("label"); label != "" {
				return label
			}
		}
	}
	return fe.Field()
}

func message(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return label + " is required"
	case "email", "contactemail":
		return "Please provide a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", label, fe.Param())
	case "phone", "possiblephone":
		return "Please provide a valid phone number"
	case "country":
		return label + " must be a recognised country"
	default:
		return label + " is invalid"
	}
}
