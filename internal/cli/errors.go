package cli

import (
	"fmt"
	"strconv"
	"strings"
)

type invalidIDError struct {
	raw string
}

func (e invalidIDError) Error() string {
	return fmt.Sprintf("invalid item id: %q", e.raw)
}

// parseItemID parses a numeric item id (milliseconds-since-epoch in browser exports).
func parseItemID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, invalidIDError{raw: s}
	}
	return id, nil
}
