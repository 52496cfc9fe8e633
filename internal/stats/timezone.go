package stats

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/st3v3nmw/focusguard/internal/types"
)

var ErrInvalidTimezone = errors.New("invalid timezone")

var offsetPattern = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)

// ParseTimezone understands "auto" (or empty), fixed offsets like "+09:00",
// and IANA names. auto resolves to local.
func ParseTimezone(tz string, local *time.Location) (*time.Location, error) {
	if tz == "" || tz == string(types.TimezoneAuto) {
		if local == nil {
			return time.UTC, nil
		}
		return local, nil
	}

	if m := offsetPattern.FindStringSubmatch(tz); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes, _ := strconv.Atoi(m[3])

		offset := (hours*60 + minutes) * 60
		if m[1] == "-" {
			offset = -offset
		}
		return time.FixedZone(tz, offset), nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, tz)
	}
	return loc, nil
}

// ResolveLocation is ParseTimezone that falls back to UTC.
func ResolveLocation(tz string, local *time.Location) *time.Location {
	loc, err := ParseTimezone(tz, local)
	if err != nil {
		slog.Warn("Falling back to UTC", "timezone", tz, "error", err)
		return time.UTC
	}
	return loc
}
