package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	appIDRegexp      = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	apiVersionRegexp = regexp.MustCompile(`^v[0-9]+$`)
	hostnameRegexp   = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?(\.[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?)*$`)
)

// getValidationMessage returns a human-readable message for a validation error
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min", "gte":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	case "gtefield":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "app_id":
		return "must consist only of letters, digits, dots, dashes and underscores"
	case "api_version":
		return "must look like v8"
	case "box_host":
		return "must be a hostname or an IP address"
	case "sha256_fingerprint":
		return "must be a hex SHA-256 fingerprint (64 hex digits, colons allowed)"
	case "hostport_or_empty":
		return "must be in format 'host:port' or empty"
	case "cidr|ip":
		return "must be an IP address or a CIDR block"
	case "url":
		return "must be an origin such as http://host:port"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// ValidationError represents a single validation error with context
type ValidationError struct {
	FieldPath string // Dot-notation field path (e.g., "auth.token_file")
	Message   string // Human-readable error message
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Register custom validators
	if err := validate.RegisterValidation("app_id", validateAppID); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("api_version", validateAPIVersion); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("box_host", validateBoxHost); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("sha256_fingerprint", validateFingerprint); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("hostport_or_empty", validateHostPortOrEmpty); err != nil {
		panic(err)
	}

	// Register function to get field name from "toml" tag, falling back to "json"
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("toml")
		if tag == "" {
			tag = fld.Tag.Get("json")
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateConfig validates the entire configuration and returns all validation errors
func (c *Config) ValidateConfig() error {
	var validationErrors ValidationErrors

	sections := []struct {
		name  string
		value interface{}
		isNil bool
	}{
		{"box", c.Box, c.Box == nil},
		{"app", c.App, c.App == nil},
		{"auth", c.Auth, c.Auth == nil},
		{"http", c.HTTP, c.HTTP == nil},
		{"server", c.Server, c.Server == nil},
	}

	for _, section := range sections {
		if section.isNil {
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: section.name,
				Message:   fmt.Sprintf("configuration must contain '%s' section", section.name),
			})
			continue
		}
		if err := validate.Struct(section.value); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, section.name)...)
		}
	}

	if c.Box != nil && c.Box.InsecureSkipVerify && c.Box.CertFingerprint != "" {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "box.insecure_skip_verify",
			Message:   "cannot be combined with cert_fingerprint",
		})
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}

// ValidateValue validates any struct carrying validate tags with the same
// rules as the configuration file.
func ValidateValue(v interface{}, fieldPrefix string) error {
	if err := validate.Struct(v); err != nil {
		if ve := convertValidatorErrors(err, fieldPrefix); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

func convertValidatorErrors(err error, fieldPrefix string) ValidationErrors {
	var validationErrors ValidationErrors

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			fieldPath := fieldPrefix
			if e.Field() != "" {
				if fieldPrefix != "" {
					fieldPath = fieldPrefix + "." + e.Field()
				} else {
					fieldPath = e.Field()
				}
			}

			validationErrors = append(validationErrors, ValidationError{
				FieldPath: fieldPath,
				Message:   getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func validateAppID(fl validator.FieldLevel) bool {
	return appIDRegexp.MatchString(fl.Field().String())
}

func validateAPIVersion(fl validator.FieldLevel) bool {
	return apiVersionRegexp.MatchString(fl.Field().String())
}

func validateBoxHost(fl validator.FieldLevel) bool {
	value := strings.Trim(fl.Field().String(), "[]")
	if net.ParseIP(value) != nil {
		return true
	}
	return len(value) <= 253 && hostnameRegexp.MatchString(value)
}

func validateFingerprint(fl validator.FieldLevel) bool {
	_, err := ParseFingerprint(fl.Field().String())
	return err == nil
}

// Custom validator: host:port format or empty
func validateHostPortOrEmpty(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, _, err := net.SplitHostPort(value)
	return err == nil
}

// ParseFingerprint decodes a SHA-256 fingerprint written as hex, with or
// without colon separators.
func ParseFingerprint(value string) ([]byte, error) {
	cleaned := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(value), ":", ""))
	raw, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid fingerprint %q: %w", value, err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("invalid fingerprint %q: expected 32 bytes, got %d", value, len(raw))
	}
	return raw, nil
}
