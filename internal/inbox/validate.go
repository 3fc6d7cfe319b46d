package inbox

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New()

	// Report errors under the wire field name, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// E.164-like: '+' followed by one or more decimal digits.
	_ = v.RegisterValidation("msisdn", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) < 2 || s[0] != '+' {
			return false
		}
		for _, c := range s[1:] {
			if c < '0' || c > '9' {
				return false
			}
		}
		return true
	})

	// ISO-8601 UTC instant with a literal 'Z' suffix.
	_ = v.RegisterValidation("utcts", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if !strings.HasSuffix(s, "Z") {
			return false
		}
		_, err := time.Parse(time.RFC3339, s)
		return err == nil
	})

	return v
}

func fieldReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "msisdn":
		return "must be '+' followed by digits"
	case "utcts":
		return "must be ISO-8601 UTC with 'Z' suffix"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

// validatePayload returns one entry per failed field, nil if p is valid.
func validatePayload(v *validator.Validate, p *Payload) []FieldError {
	err := v.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Reason: "is invalid"}}
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Reason: fieldReason(fe)})
	}
	return fields
}
