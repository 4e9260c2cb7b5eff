package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig checks the struct tags on Config and reports every
// violation at once, so a broken file surfaces all its problems in a
// single run instead of one restart at a time.
func ValidateConfig(cfg *Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	lines := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		lines = append(lines, describeFieldError(fe))
	}
	return fmt.Errorf("%s", strings.Join(lines, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q",
			fe.Namespace(), fe.Param(), fmt.Sprint(fe.Value()))
	case "min":
		return fmt.Sprintf("%s must be at least %s, got %v",
			fe.Namespace(), fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s, got %v",
			fe.Namespace(), fe.Param(), fe.Value())
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	default:
		return fmt.Sprintf("%s fails the %q check (value %v)",
			fe.Namespace(), fe.Tag(), fe.Value())
	}
}
