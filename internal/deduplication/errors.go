package deduplication

import (
	"errors"
	"fmt"
	"strings"

	"github.com/steveyegge/partsbin/internal/storage"
)

var (
	// ErrNotFound indicates a referenced component does not exist at call time
	ErrNotFound = storage.ErrNotFound

	// ErrInvalidArgument indicates a request that can never succeed, such as
	// merging a component into itself
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStoreFailure indicates the backing store could not complete an operation
	ErrStoreFailure = errors.New("store failure")

	// ErrPartialMerge indicates the target was updated but the source could not
	// be deleted. The pair needs manual reconciliation.
	ErrPartialMerge = errors.New("partial merge")
)

// StoreError carries the operation and ids involved in a failed store call
type StoreError struct {
	Op      string
	IDs     []int64
	Partial bool
	Err     error
}

func (e *StoreError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	kind := ErrStoreFailure.Error()
	if e.Partial {
		kind = ErrPartialMerge.Error()
	}
	return fmt.Sprintf("%s: %s [%s]: %v", kind, e.Op, strings.Join(ids, ", "), e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is matches ErrStoreFailure always and ErrPartialMerge when Partial is set
func (e *StoreError) Is(target error) bool {
	switch target {
	case ErrStoreFailure:
		return true
	case ErrPartialMerge:
		return e.Partial
	}
	return false
}

// storeErr passes NotFound through unchanged and wraps everything else
func storeErr(op string, err error, ids ...int64) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidArgument) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, IDs: ids, Err: err}
}

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
