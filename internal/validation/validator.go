// Package validation checks user input before it is sent to the backend.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate

	collectionNameRe = regexp.MustCompile(`^[a-z0-9_]+$`)
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		if err := v.RegisterValidation("collection_name", isCollectionName); err != nil {
			panic("registering validation rules: " + err.Error())
		}
		validate = v
	})
	return validate
}

// isCollectionName accepts vector collection names: lowercase letters,
// digits and underscores.
func isCollectionName(fl validator.FieldLevel) bool {
	return collectionNameRe.MatchString(fl.Field().String())
}

// Struct validates a payload against its validate tags. The returned error
// lists every failing field by its JSON name.
func Struct(payload any) error {
	err := instance().Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid input: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", field)
	case "collection_name":
		return field + " may only contain lowercase letters, digits and underscores"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
