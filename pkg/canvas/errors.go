package canvas

import "errors"

var (
	ErrGestureInProgress = errors.New("another gesture is in progress")
	ErrNotDragging       = errors.New("no drag in progress")
	ErrNotPicking        = errors.New("no connection in progress")
	ErrNoOutput          = errors.New("block has no output connector")
	ErrUnknownBlock      = errors.New("block not found")
)
