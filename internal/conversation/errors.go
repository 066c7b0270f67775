package conversation

import (
	"errors"
	"fmt"
)

var errNoSender = errors.New("no sender configured")

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("sender panicked: %v", e.value)
}
