package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoServerURL is returned when neither the invocation context nor the
// endpoint provides a base URL for the request.
var ErrNoServerURL = errors.New("no server URL available: provide an override or declare servers in the spec")

// MissingParameterError reports every required flattened parameter that was
// absent at invocation time, not just the first one found.
type MissingParameterError struct {
	Names []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameters: %s", strings.Join(e.Names, ", "))
}
