// Package idx mints the sortable identifiers that tag each request in logs
// and the X-Request-ID header.
package idx

import (
	"errors"
	"strings"

	"github.com/oklog/ulid/v2"
)

// ErrInvalid reports a malformed request id.
var ErrInvalid = errors.New("idx: invalid request id")

// RequestID is a canonical ULID string.
type RequestID string

// New returns a fresh id. Ids minted by one process sort in creation
// order, even within the same millisecond.
func New() RequestID {
	return RequestID(ulid.Make().String())
}

// Parse accepts a client-supplied id only if it is a canonical ULID, so
// arbitrary header content never reaches the logs.
func Parse(s string) (RequestID, error) {
	s = strings.TrimSpace(s)
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return "", ErrInvalid
	}
	return RequestID(id.String()), nil
}

func (id RequestID) String() string { return string(id) }
