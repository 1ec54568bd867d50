package mutate

import (
	"errors"
	"fmt"
)

var ErrInvalidQuantity = errors.New("invalid quantity")

// ErrQuantityUntracked is returned by UpdateQuantity when the policy does not track quantities.
var ErrQuantityUntracked = errors.New("quantity tracking is disabled")

type NotFoundError struct {
	Kind string
	ID   int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Kind, e.ID)
}
