package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/rivo/uniseg"
)

// Rule checks a single field value and returns a user-facing error.
// Rules are synchronous and must not perform I/O.
//
// Every rule except Required treats a blank value as valid, so optional
// fields only need Required left off.
type Rule func(value string) error

// DateLayout is the wire and input format of KindDate fields.
const DateLayout = "2006-01-02"

// Required rejects blank values.
func Required() Rule {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return errors.New("required")
		}
		return nil
	}
}

// Number rejects values that are not a finite decimal number written the way
// JSON writes one ("0.5", not ".5", "+5", "05" or "NaN").
func Number() Rule {
	return func(value string) error {
		v := strings.TrimSpace(value)
		if v == "" {
			return nil
		}
		if _, err := ParseNumber(v); err != nil {
			return errors.New("must be a number")
		}
		return nil
	}
}

// NumberRange rejects numbers outside [lo, hi].
func NumberRange(lo, hi float64) Rule {
	return func(value string) error {
		v := strings.TrimSpace(value)
		if v == "" {
			return nil
		}
		n, err := ParseNumber(v)
		if err != nil {
			return errors.New("must be a number")
		}
		if n < lo || n > hi {
			return fmt.Errorf("must be between %s and %s", formatBound(lo), formatBound(hi))
		}
		return nil
	}
}

var errNotNumber = errors.New("not a number")

// ParseNumber accepts exactly the strings BuildPayload can send as a
// json.Number, and only finite values.
func ParseNumber(v string) (float64, error) {
	if v == "" || (v[0] != '-' && (v[0] < '0' || v[0] > '9')) || !json.Valid([]byte(v)) {
		return 0, errNotNumber
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, errNotNumber
	}
	return n, nil
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Email rejects values that are not a bare email address.
func Email() Rule {
	return func(value string) error {
		v := strings.TrimSpace(value)
		if v == "" {
			return nil
		}
		addr, err := mail.ParseAddress(v)
		if err != nil || addr.Address != v {
			return errors.New("must be a valid email")
		}
		return nil
	}
}

// MaxLength rejects values longer than n user-perceived characters.
func MaxLength(n int) Rule {
	return func(value string) error {
		if uniseg.GraphemeClusterCount(value) > n {
			return fmt.Errorf("must be at most %d characters", n)
		}
		return nil
	}
}

// Date rejects values not in YYYY-MM-DD form.
func Date() Rule {
	return func(value string) error {
		v := strings.TrimSpace(value)
		if v == "" {
			return nil
		}
		if _, err := time.Parse(DateLayout, v); err != nil {
			return errors.New("must be a date (YYYY-MM-DD)")
		}
		return nil
	}
}

// OneOf rejects values outside the allowed set.
func OneOf(allowed ...string) Rule {
	return func(value string) error {
		if value == "" {
			return nil
		}
		for _, a := range allowed {
			if value == a {
				return nil
			}
		}
		return fmt.Errorf("must be one of %s", strings.Join(allowed, ", "))
	}
}

// check runs rules in order and returns the first failure message.
func check(rules []Rule, value string) string {
	for _, rule := range rules {
		if err := rule(value); err != nil {
			return err.Error()
		}
	}
	return ""
}
