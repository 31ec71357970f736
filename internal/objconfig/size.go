package objconfig

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
)

// ParseCapacity accepts either a bare integer or a humanized size string
// ("10k", "1M") for a reference-set or history-set capacity bound. Empty
// or "unbounded" means no limit. Load does not call it: the TOML keys
// reference_capacity and history_capacity decode as plain integers.
func ParseCapacity(s string) (int, error) {
	if s == "" || s == "unbounded" {
		return 0, nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	bytes, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("objconfig: parsing capacity %q: %w", s, err)
	}

	return int(bytes), nil
}

// FormatCapacity renders a capacity bound for human-facing output, with
// zero shown as "unbounded". The CLI does not call it.
func FormatCapacity(n int) string {
	if n == 0 {
		return "unbounded"
	}

	return humanize.Comma(int64(n))
}
