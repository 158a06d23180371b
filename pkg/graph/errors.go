package graph

import (
	"errors"
	"fmt"
)

// Validation errors. They are reported to the caller and never leave the store modified.
var (
	ErrInvalidBlocks          = errors.New("invalid blocks")
	ErrSelfConnection         = errors.New("block cannot connect to itself")
	ErrDuplicateConnection    = errors.New("duplicate connection")
	ErrInvalidCategoryPairing = errors.New("invalid category pairing")
	ErrDuplicateBlockID       = errors.New("duplicate block id")
	ErrNilConfig              = errors.New("config cannot be nil")
	ErrConfigTypeMismatch     = errors.New("config does not match block type")
)

// ConnectionError wraps connection-related errors with the edge being created.
type ConnectionError struct {
	Op       string // Operation being performed
	SourceID string // Source block ID
	TargetID string // Target block ID
	Err      error  // Underlying error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %s -> %s: %v", e.Op, e.SourceID, e.TargetID, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// BlockError wraps block-related errors with additional context.
type BlockError struct {
	Op      string // Operation being performed
	BlockID string // Block ID, empty when not yet assigned
	Err     error  // Underlying error
}

func (e *BlockError) Error() string {
	if e.BlockID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("%s block %s: %v", e.Op, e.BlockID, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

func (e *BlockError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a rejected graph mutation.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidBlocks) ||
		errors.Is(err, ErrSelfConnection) ||
		errors.Is(err, ErrDuplicateConnection) ||
		errors.Is(err, ErrInvalidCategoryPairing) ||
		errors.Is(err, ErrDuplicateBlockID) ||
		errors.Is(err, ErrNilConfig) ||
		errors.Is(err, ErrConfigTypeMismatch)
}

// UserMessage renders a connection outcome for the notification sink.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return "Blocks connected"
	case errors.Is(err, ErrDuplicateConnection):
		return "These blocks are already connected"
	case errors.Is(err, ErrSelfConnection):
		return "A block cannot connect to itself"
	case errors.Is(err, ErrInvalidBlocks):
		return "Invalid connection: one of the blocks no longer exists"
	case errors.Is(err, ErrInvalidCategoryPairing):
		return "Invalid connection between these block types"
	default:
		return "Could not connect blocks: " + err.Error()
	}
}
