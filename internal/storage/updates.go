package storage

import (
	"fmt"
	"sort"
	"strings"
)

// ValidateUpdates checks an UpdateComponent map and returns its keys in a
// stable order. Field names are checked against AllowedUpdateFields before
// they are ever interpolated into SQL.
func ValidateUpdates(updates map[string]interface{}) ([]string, error) {
	keys := make([]string, 0, len(updates))
	for key := range updates {
		if !AllowedUpdateFields[key] {
			return nil, fmt.Errorf("%w: %s", ErrInvalidField, key)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := validateUpdateValue(key, updates[key]); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func validateUpdateValue(key string, value interface{}) error {
	switch key {
	case "quantity":
		quantity, ok := value.(int)
		if !ok {
			return fmt.Errorf("quantity must be an int (got %T)", value)
		}
		if quantity < 0 {
			return fmt.Errorf("quantity cannot be negative (got %d)", quantity)
		}
	case "name":
		name, ok := value.(string)
		if !ok {
			return fmt.Errorf("name must be a string (got %T)", value)
		}
		if strings.TrimSpace(name) == "" || len(name) > 500 {
			return fmt.Errorf("name must be 1-500 characters")
		}
	case "category":
		category, ok := value.(string)
		if !ok {
			return fmt.Errorf("category must be a string (got %T)", value)
		}
		if category == "" {
			return fmt.Errorf("category cannot be empty")
		}
	default:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%s must be a string (got %T)", key, value)
		}
	}
	return nil
}
