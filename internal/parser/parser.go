// Package parser turns free-text part descriptions into components.
package parser

import (
	"context"

	"github.com/steveyegge/partsbin/internal/types"
)

// Parser extracts a component from one line of free text.
// The returned component has no ID and is not yet stored.
type Parser interface {
	Parse(ctx context.Context, text string) (*types.Component, error)
}

// DefaultQuantity is used when the text does not state a quantity
const DefaultQuantity = 1
