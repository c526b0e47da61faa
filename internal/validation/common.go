package validation

import (
	"regexp"
	"strconv"
	"strings"

	"arenad/internal/constants"
	"arenad/internal/errors"
)

var (
	// idRegex validates entity keys taken from URLs and the command line
	idRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.:-]*$`)

	// filterKeyRegex validates filter names
	filterKeyRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
)

// ID validates an entity key
func ID(id string) error {
	if id == "" {
		return errors.ValidationFailed("id", id, "cannot be empty")
	}

	if len(id) > 255 {
		return errors.ValidationFailed("id", id, "too long (max 255 characters)")
	}

	if !idRegex.MatchString(id) {
		return errors.ValidationFailed("id", id, "must contain only letters, digits, '_', '.', ':' and '-'")
	}

	return nil
}

// PortNumber validates a single port number
func PortNumber(port int) error {
	if port < constants.MinPortNumber || port > constants.MaxPortNumber {
		return errors.ValidationFailed("port", strconv.Itoa(port), "must be between 1 and 65535")
	}
	return nil
}

// NonEmptyString validates that a string is not empty or only whitespace
func NonEmptyString(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.ValidationFailed(field, s, "cannot be empty or only whitespace")
	}
	return nil
}

// FilterPairs parses KEY=VALUE arguments into a filter map. A later pair
// overrides an earlier one with the same key.
func FilterPairs(pairs []string) (map[string]any, error) {
	filters := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, errors.ValidationFailed("filter", pair, "must be in KEY=VALUE format")
		}
		key = strings.TrimSpace(key)
		if !filterKeyRegex.MatchString(key) {
			return nil, errors.ValidationFailed("filter", key, "must start with a letter and contain only letters, digits and underscores")
		}
		if IsReserved(key) {
			return nil, errors.ValidationFailed("filter", key, "is a reserved query parameter")
		}
		filters[key] = value
	}
	return filters, nil
}
