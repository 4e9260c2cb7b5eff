package cli

import (
	"fmt"
	"strconv"
	"time"
)

// parseUnitIDs converts command arguments into engine unit IDs
func parseUnitIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid unit id %q: must be a number", arg)
		}
		if id <= 0 {
			return nil, fmt.Errorf("invalid unit id %d: must be positive", id)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
