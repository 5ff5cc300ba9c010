// Package geocode wraps the forward-geocoding collaborator behind a narrow
// interface.
package geocode

import (
	"context"
	"errors"

	"github.com/ollxel/geotimer-bot/internal/domain"
)

// ErrNotFound indicates the query did not resolve to any coordinates.
var ErrNotFound = errors.New("address not found")

// Resolver turns a free-text address into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, query string) (domain.Point, error)
}
