package funds

import (
	"time"

	"github.com/spf13/cast"
)

// parseTime accepts unix seconds or any layout cast understands. Empty or
// unparsable input yields the zero time.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	if sec, err := cast.ToInt64E(s); err == nil {
		return time.Unix(sec, 0)
	}

	return cast.ToTime(s)
}

func seconds(n int64) time.Duration {
	return time.Duration(n) * time.Second
}
