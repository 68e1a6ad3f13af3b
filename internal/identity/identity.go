// Package identity classifies event identifiers.
//
// An event id is either a plain id, denoting a single occurrence, or a
// composite id of the form <baseID>_<YYYY-MM-DD>, denoting one calendar day
// of the series identified by baseID. The base id may itself contain
// underscores.
package identity

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ErrInvalidIdentifier = errors.New("invalid event identifier")
	ErrInvalidDate       = errors.New("invalid instance date")
)

// DateLayout is the layout of the trailing date segment of a composite id.
const DateLayout = "2006-01-02"

const separator = "_"

// The pattern does not check month or day ranges: "2025-13-45" is
// date-shaped.
var dateKeyRX = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type Kind int

const (
	KindSingle Kind = iota
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindInstance:
		return "instance"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type ID struct {
	Kind    Kind
	BaseID  string
	DateKey string
}

// Classify splits id on underscores and reports whether its last segment is
// a date key.
func Classify(id string) (ID, error) {
	if id == "" {
		return ID{}, fmt.Errorf("classify: %w", ErrInvalidIdentifier)
	}

	segments := strings.Split(id, separator)
	last := segments[len(segments)-1]

	if len(segments) >= 2 && dateKeyRX.MatchString(last) {
		if len(segments) == 2 && segments[0] == "" {
			return ID{}, fmt.Errorf("classify %q: empty base: %w", id, ErrInvalidIdentifier)
		}

		return ID{
			Kind:    KindInstance,
			BaseID:  strings.Join(segments[:len(segments)-1], separator),
			DateKey: last,
		}, nil
	}

	return ID{Kind: KindSingle, BaseID: id}, nil
}

type Predicate func(id string) bool

// SiblingPredicate matches baseID itself and every id that starts with
// baseID followed by the separator.
func SiblingPredicate(baseID string) (Predicate, error) {
	if baseID == "" {
		return nil, fmt.Errorf("sibling predicate: %w", ErrInvalidIdentifier)
	}

	prefix := baseID + separator
	return func(id string) bool {
		return id == baseID || strings.HasPrefix(id, prefix)
	}, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SiblingPattern returns the LIKE pattern matching every instance of
// baseID. The base record itself has to be matched by equality.
func SiblingPattern(baseID string) (string, error) {
	if baseID == "" {
		return "", fmt.Errorf("sibling pattern: %w", ErrInvalidIdentifier)
	}

	return likeEscaper.Replace(baseID) + `\_%`, nil
}

// DeriveInstance builds the composite id of baseID's instance on date.
func DeriveInstance(baseID string, date time.Time) (string, error) {
	if baseID == "" {
		return "", fmt.Errorf("derive instance: %w", ErrInvalidIdentifier)
	}
	if date.IsZero() || date.Year() < 1 || date.Year() > 9999 {
		return "", fmt.Errorf("derive instance %v: %w", date, ErrInvalidDate)
	}

	return baseID + separator + FormatDateKey(date), nil
}

func FormatDateKey(date time.Time) string {
	return date.Format(DateLayout)
}

// ParseDateKey parses a calendar day strictly, unlike Classify.
func ParseDateKey(key string) (time.Time, error) {
	if !dateKeyRX.MatchString(key) {
		return time.Time{}, fmt.Errorf("parse date key %q: %w", key, ErrInvalidDate)
	}

	date, err := time.Parse(DateLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date key %q: %w", key, ErrInvalidDate)
	}

	return date, nil
}
