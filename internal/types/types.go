package types

import (
	"fmt"
	"strings"
	"time"
)

// DefaultCategory is assigned when a parser cannot place a component.
const DefaultCategory = "Uncategorized"

// Component represents one catalog record for a hardware part
type Component struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Specifications string    `json:"specifications"`
	Source         string    `json:"source"`
	Quantity       int       `json:"quantity"`
	Storage        string    `json:"storage"`
	CreatedAt      time.Time `json:"created_at"`
}

// Validate checks if the component has valid field values
func (c *Component) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(c.Name) > 500 {
		return fmt.Errorf("name must be 500 characters or less (got %d)", len(c.Name))
	}
	if c.Category == "" {
		return fmt.Errorf("category is required")
	}
	if c.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative (got %d)", c.Quantity)
	}
	return nil
}

// Clone returns a copy of the component
func (c *Component) Clone() *Component {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// AnnotatedComponent is a component plus the probable-duplicate flag
type AnnotatedComponent struct {
	Component
	HasSimilar bool `json:"has_similar"`
}

// ExclusionPair records that two components are confirmed NOT duplicates.
// The pair is unordered; Low < High always holds so each fact has exactly one row.
type ExclusionPair struct {
	Low       int64     `json:"low_id"`
	High      int64     `json:"high_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewExclusionPair returns the canonical pair for a and b.
// It returns an error when a == b since a component cannot be excluded from itself.
func NewExclusionPair(a, b int64) (ExclusionPair, error) {
	if a == b {
		return ExclusionPair{}, fmt.Errorf("exclusion pair requires two distinct ids (got %d twice)", a)
	}
	if a > b {
		a, b = b, a
	}
	return ExclusionPair{Low: a, High: b}, nil
}

// Other returns the id on the opposite side of the pair from id.
// ok is false if id is not part of the pair.
func (p ExclusionPair) Other(id int64) (other int64, ok bool) {
	switch id {
	case p.Low:
		return p.High, true
	case p.High:
		return p.Low, true
	}
	return 0, false
}

// MergeRecord is the audit row written when one component is folded into another
type MergeRecord struct {
	ID             string    `json:"id"`
	SourceID       int64     `json:"source_id"`
	TargetID       int64     `json:"target_id"`
	SourceName     string    `json:"source_name"`
	SourceQuantity int       `json:"source_quantity"`
	MergedAt       time.Time `json:"merged_at"`
}

// ComponentFilter is used to filter component queries
type ComponentFilter struct {
	Query         string // Substring match across name, specifications, source, category, storage
	Categories    []string
	MinQuantity   *int
	MaxQuantity   *int
	Storage       string // Substring match on storage location
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	ZeroQuantity  *bool // true = only quantity 0, false = only quantity > 0
	Limit         int
}
