package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidID is returned for identifiers that cannot belong to the backend.
var ErrInvalidID = errors.New("invalid id")

// UUID normalizes a knowledge-base or point identifier.
func UUID(s string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidID, s, err)
	}
	return id.String(), nil
}

// ProspectIDs parses numeric prospect identifiers.
func ProspectIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w %q: prospect ids are positive integers", ErrInvalidID, a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Estado checks a lead state against the allowed set.
func Estado(estado string, allowed []string) error {
	for _, a := range allowed {
		if estado == a {
			return nil
		}
	}
	return fmt.Errorf("invalid estado %q: allowed values are %s", estado, strings.Join(allowed, ", "))
}
