package store

import (
	"fmt"
	"strconv"
	"strings"
)

func parseHeight(raw string) (uint64, error) {
	s := strings.TrimSpace(raw)
	h, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid watermark %q: %w", s, err)
	}
	return h, nil
}

func formatHeight(h uint64) string {
	return strconv.FormatUint(h, 10)
}
