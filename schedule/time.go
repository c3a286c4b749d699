package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTime parses a "HH:MM:SS" schedule time into seconds since
// service start. Hours above 24 are legal (trips running past
// midnight). An empty string yields UndefinedTime.
func ParseTime(raw string) (float64, error) {
	if raw == "" {
		return UndefinedTime, nil
	}
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM:SS", raw)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	s, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || h < 0 || m < 0 || m > 59 || s < 0 || s > 59 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM:SS", raw)
	}
	return float64(h*3600 + m*60 + s), nil
}

// FormatTime formats seconds as "HH:MM:SS". UndefinedTime formats as
// the empty string.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		return ""
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}
