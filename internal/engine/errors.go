package engine

import (
	"errors"

	"github.com/hyperengineering/cdusync/internal/order"
)

// Local precondition failures. Remote failures never surface as errors from
// a mutation; they are reported through the Notifier.
var (
	ErrNotFound        = errors.New("entity not found")
	ErrParentNotFound  = errors.New("parent not found")
	ErrInvalidView     = errors.New("invalid view type")
	ErrInvalidSection  = errors.New("invalid info section")
	ErrIndexOutOfRange = order.ErrIndexOutOfRange
)
