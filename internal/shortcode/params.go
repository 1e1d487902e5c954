package shortcode

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

var (
	ErrUnknownParameter = errors.New("shortcode: unknown parameter")
	ErrMissingParameter = errors.New("shortcode: missing required parameter")
	ErrParameterType    = errors.New("shortcode: parameter type mismatch")
)

var paramTypes = []any{
	interfaces.ShortcodeParamString,
	interfaces.ShortcodeParamInt,
	interfaces.ShortcodeParamBool,
	interfaces.ShortcodeParamList,
	interfaces.ShortcodeParamURL,
}

// Validator checks definitions and binds raw attributes to their schema.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateDefinition requires a name, a handler and uniquely named params of
// a known type.
func (v *Validator) ValidateDefinition(def interfaces.ShortcodeDefinition) error {
	err := validation.ValidateStruct(&def,
		validation.Field(&def.Name, validation.Required),
		validation.Field(&def.Handler, validation.NotNil),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	seen := make(map[string]bool, len(def.Schema.Params))
	for _, param := range def.Schema.Params {
		name := strings.TrimSpace(param.Name)
		if name == "" {
			return fmt.Errorf("%w: %s has a parameter without a name", ErrInvalidDefinition, def.Name)
		}
		if seen[name] {
			return fmt.Errorf("%w: %s declares %q twice", ErrInvalidDefinition, def.Name, name)
		}
		seen[name] = true
		if err := validation.Validate(param.Type, validation.Required, validation.In(paramTypes...)); err != nil {
			return fmt.Errorf("%w: %s parameter %q type %q", ErrInvalidDefinition, def.Name, name, param.Type)
		}
	}
	return nil
}

// Bind converts supplied attributes to the types the schema declares and
// fills in defaults. Undeclared attributes are dropped when the schema
// allows it and rejected otherwise.
func (v *Validator) Bind(def interfaces.ShortcodeDefinition, supplied map[string]any) (map[string]any, error) {
	if err := v.ValidateDefinition(def); err != nil {
		return nil, err
	}

	declared := make(map[string]interfaces.ShortcodeParam, len(def.Schema.Params))
	bound := make(map[string]any, len(def.Schema.Params))
	for _, param := range def.Schema.Params {
		declared[param.Name] = param
		if param.Default != nil {
			bound[param.Name] = param.Default
		}
	}

	for name, raw := range supplied {
		param, ok := declared[name]
		if !ok {
			if def.Schema.AllowUnknown {
				continue
			}
			return nil, fmt.Errorf("%w: %s", ErrUnknownParameter, name)
		}
		value, err := convert(param.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParameterType, name, err)
		}
		if param.Validate != nil {
			if err := param.Validate(value); err != nil {
				return nil, err
			}
		}
		bound[name] = value
	}

	for _, param := range def.Schema.Params {
		if _, ok := bound[param.Name]; param.Required && !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingParameter, param.Name)
		}
	}
	return bound, nil
}

func convert(kind interfaces.ShortcodeParamType, raw any) (any, error) {
	switch kind {
	case interfaces.ShortcodeParamString:
		return asString(raw), nil
	case interfaces.ShortcodeParamInt:
		switch n := raw.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			return int(n), nil
		}
		return strconv.Atoi(strings.TrimSpace(asString(raw)))
	case interfaces.ShortcodeParamBool:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
		return parseBool(asString(raw))
	case interfaces.ShortcodeParamList:
		return asList(raw), nil
	case interfaces.ShortcodeParamURL:
		s := strings.TrimSpace(asString(raw))
		if _, err := url.ParseRequestURI(s); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unsupported parameter type %q", kind)
}

func asString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case nil:
		return ""
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(raw)
}

func asList(raw any) []string {
	var parts []string
	switch v := raw.(type) {
	case []string:
		parts = v
	case []any:
		for _, item := range v {
			parts = append(parts, asString(item))
		}
	default:
		parts = strings.Split(asString(raw), ",")
	}

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseBool accepts the spellings authors use in shortcode attributes.
func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off", "":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(raw))
}
