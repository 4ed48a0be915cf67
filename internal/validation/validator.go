// Package validation validates request payloads with go-playground/validator
// and reports failures as domain validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/arcanaoficial/arcana-server/internal/errors"
)

var (
	// Same permissive shape the public forms have always accepted.
	contactEmailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	gmailRe        = regexp.MustCompile(`(?i)^[a-zA-Z0-9._%+-]+@gmail\.com$`)
	phoneRe        = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{5,}[0-9]$`)
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the custom tags used by the public forms:
//
//	contactemail  loose address check (something@something.tld)
//	gmail         an @gmail.com address with a 3-30 char local part,
//	              no consecutive dots and no leading or trailing dot
//	whatsapp      a phone number, optionally prefixed with +
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "contactemail", func(fl validator.FieldLevel) bool {
		return contactEmailRe.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	mustRegister(v, "gmail", func(fl validator.FieldLevel) bool {
		return GmailProblem(fl.Field().String()) == ""
	})
	mustRegister(v, "whatsapp", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(strings.TrimSpace(fl.Field().String()))
	})

	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email", "contactemail":
		return "must be a valid email address"
	case "gmail":
		if msg := GmailProblem(fmt.Sprint(e.Value())); msg != "" {
			return msg
		}
		return "must be a gmail address"
	case "whatsapp":
		return "must be a valid phone number"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

// GmailProblem returns why email is not accepted for early access, or ""
// when it is. Checks run in the order users see them.
func GmailProblem(email string) string {
	email = strings.TrimSpace(email)
	switch {
	case !contactEmailRe.MatchString(email):
		return "must be a valid email address"
	case !gmailRe.MatchString(email):
		return "only @gmail.com addresses are accepted"
	}

	user, _, _ := strings.Cut(email, "@")
	switch {
	case len(user) < 3:
		return "username must be at least 3 characters"
	case len(user) > 30:
		return "username is too long"
	case strings.Contains(user, ".."):
		return "consecutive dots are not allowed"
	case strings.HasPrefix(user, ".") || strings.HasSuffix(user, "."):
		return "email cannot start or end with a dot"
	}
	return ""
}
