// Package coerce converts raw markup text into typed values, driven by the
// type tag the source dump attaches to each field.
package coerce

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Declared type tags used by the dump's `type` attribute.
const (
	TypeString   = ""
	TypeBoolean  = "boolean"
	TypeInteger  = "integer"
	TypeDatetime = "datetime"
)

const (
	naiveLayout  = "2006-01-02T15:04:05"
	naiveWidth   = len(naiveLayout)
	offsetLayout = "15:04"
)

// MalformedFieldError reports raw text that does not match its declared type.
type MalformedFieldError struct {
	Field    string
	Declared string
	Raw      string
	Err      error
}

func (e *MalformedFieldError) Error() string {
	msg := fmt.Sprintf("malformed %s value %q", e.Declared, e.Raw)
	if e.Field != "" {
		msg = fmt.Sprintf("field %s: %s", e.Field, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedFieldError) Unwrap() error {
	return e.Err
}

// Coerce converts raw according to declared.
//
// A nil raw yields nil. Booleans accept exactly "true" or "false"; any type
// ending in "integer" parses as a base-10 int64; datetimes become UTC instants
// (see ParseDatetime); every other type returns the text unchanged.
func Coerce(raw *string, declared string) (any, error) {
	if raw == nil {
		return nil, nil
	}
	text := *raw

	switch {
	case declared == TypeBoolean:
		switch text {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, &MalformedFieldError{Declared: declared, Raw: text, Err: fmt.Errorf(`"true" or "false" expected`)}
	case strings.HasSuffix(declared, TypeInteger):
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, &MalformedFieldError{Declared: declared, Raw: text, Err: err}
		}
		return n, nil
	case declared == TypeDatetime:
		if text == "" {
			return nil, nil
		}
		return ParseDatetime(text)
	default:
		return text, nil
	}
}

// ParseDatetime parses "YYYY-MM-DDTHH:MM:SS±HH:MM" into a UTC time holding
// the naive timestamp with the offset applied: added for '+', subtracted for
// '-'. A bare timestamp or a trailing "Z" means no offset.
func ParseDatetime(text string) (time.Time, error) {
	malformed := func(err error) (time.Time, error) {
		return time.Time{}, &MalformedFieldError{Declared: TypeDatetime, Raw: text, Err: err}
	}

	if len(text) < naiveWidth {
		return malformed(fmt.Errorf("shorter than %d characters", naiveWidth))
	}
	naive, err := time.ParseInLocation(naiveLayout, text[:naiveWidth], time.UTC)
	if err != nil {
		return malformed(err)
	}

	rest := text[naiveWidth:]
	if rest == "" || rest == "Z" {
		return naive, nil
	}

	sign := rest[0]
	if sign != '+' && sign != '-' {
		return malformed(fmt.Errorf("unexpected timezone sign %q", sign))
	}
	amount, err := time.Parse(offsetLayout, rest[1:])
	if err != nil {
		return malformed(err)
	}
	offset := time.Duration(amount.Hour())*time.Hour + time.Duration(amount.Minute())*time.Minute

	if sign == '-' {
		return naive.Add(-offset), nil
	}
	return naive.Add(offset), nil
}

// Conform converts a coerced value to the declared type of the column it is
// stored in. Values already of the right Go type pass through; strings are
// coerced with the column's type, so an untagged field holding "maybe" in a
// boolean column is still malformed.
func Conform(value any, declared string) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch declared {
	case TypeBoolean:
		if _, ok := value.(bool); ok {
			return value, nil
		}
	case TypeInteger:
		if _, ok := value.(int64); ok {
			return value, nil
		}
	case TypeDatetime:
		if _, ok := value.(time.Time); ok {
			return value, nil
		}
	default:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return fmt.Sprint(value), nil
	}

	s, ok := value.(string)
	if !ok {
		return nil, &MalformedFieldError{Declared: declared, Raw: fmt.Sprint(value), Err: fmt.Errorf("cannot store %T", value)}
	}
	return Coerce(&s, declared)
}
