package config

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/streamkit/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their config key. Squashed embeds keep their Go
		// name and are dropped again by fieldPath.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			return strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		})
	})
	return validate
}

// FieldError describes one rejected configuration field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks the `validate` struct tags of cfg. Failures are returned
// as an INVALID_CONFIG AppError listing every rejected field under the
// "fields" detail.
func Validate(cfg any) error {
	err := getValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.InvalidConfig("configuration validation failed").WithCause(err)
	}

	fields := make([]FieldError, 0, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := fieldPath(e.Namespace())
		msg := describe(e)
		fields = append(fields, FieldError{Field: field, Message: msg})
		messages = append(messages, field+" "+msg)
	}
	return errors.InvalidConfig(strings.Join(messages, "; ")).WithDetail("fields", fields)
}

// fieldPath turns a validator namespace into a config key path, dropping the
// root struct and every segment without a mapstructure key.
func fieldPath(ns string) string {
	segments := strings.Split(ns, ".")
	keys := make([]string, 0, len(segments))
	for i, seg := range segments {
		if i == 0 || seg == "" || unicode.IsUpper(rune(seg[0])) {
			continue
		}
		keys = append(keys, seg)
	}
	return strings.Join(keys, ".")
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of [" + e.Param() + "]"
	case "gt":
		return "must be greater than " + e.Param()
	case "gte", "min":
		return "must be at least " + e.Param()
	case "lte", "max":
		return "must be at most " + e.Param()
	case "hostname_port":
		return "must be a host:port address"
	case "gtfield":
		return "must be greater than " + strings.ToLower(e.Param())
	default:
		return "is invalid (" + e.Tag() + ")"
	}
}
