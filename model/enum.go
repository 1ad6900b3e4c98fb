package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownEnum is returned when decoding a value outside of a closed enum
var ErrUnknownEnum = errors.New("unknown enum value")

func unknownEnum(typeName string, value string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownEnum, typeName, value)
}

func decodeEnumString(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", err
	}
	return s, nil
}

func containsEnum[T ~string](values []T, v T) bool {
	for _, e := range values {
		if e == v {
			return true
		}
	}
	return false
}

func parseEnum[T ~string](typeName string, values []T, s string) (T, error) {
	v := T(s)
	if !containsEnum(values, v) {
		return "", unknownEnum(typeName, s)
	}
	return v, nil
}

func unmarshalEnum[T ~string](typeName string, values []T, data []byte, dest *T) error {
	s, err := decodeEnumString(data)
	if err != nil {
		return err
	}
	if s == "" {
		// unset, e.g. the status of a campaign before the backend assigns one
		*dest = ""
		return nil
	}
	v, err := parseEnum(typeName, values, s)
	if err != nil {
		return err
	}
	*dest = v
	return nil
}
