package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"storefront/internal/apperr"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// password rules, checked in this order
var passwordRules = []struct {
	tag     string
	chars   string
	message string
}{
	{"hasupper", "ABCDEFGHIJKLMNOPQRSTUVWXYZ", "Must include uppercase letter"},
	{"haslower", "abcdefghijklmnopqrstuvwxyz", "Must include lowercase letter"},
	{"hasdigit", "0123456789", "Must include number"},
	{"hasspecial", "!@#$%^&*", "Must include special character"},
}

// registerValidators adds the custom rules to gin's validator and makes it
// report fields by their json or form name.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
		for _, rule := range passwordRules {
			chars := rule.chars
			_ = v.RegisterValidation(rule.tag, func(fl validator.FieldLevel) bool {
				return strings.ContainsAny(fl.Field().String(), chars)
			})
		}
	})
}

func fieldMessage(fe validator.FieldError) string {
	for _, rule := range passwordRules {
		if fe.Tag() == rule.tag {
			return rule.message
		}
	}

	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "uuid":
		return field + " must be a valid UUID"
	case "alphanum":
		return field + " must contain only letters and numbers"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			if fe.Param() == "1" {
				return "At least one item is required"
			}
			return fmt.Sprintf("%s must contain at least %s items", field, fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

// bindError turns a gin binding failure into a validation error.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldMessage(fe))
		}
		return apperr.Validation(fields...)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperr.Validation(fmt.Sprintf("%s has the wrong type", typeErr.Field))
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return apperr.Validation("Malformed JSON body")
	}
	return apperr.Validation(err.Error())
}
