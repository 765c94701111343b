package session

import (
	"fmt"
	"time"

	"github.com/user-none/pockystation/engine"
)

// rtcSyncPeriod is the number of frames between two host clock syncs.
const rtcSyncPeriod = 60

// HostTime is a broken-down host wall-clock reading with zero-based fields.
type HostTime struct {
	Year    int // years since 1900
	Month   int // 0-11
	Day     int // day of month, 0-30
	Weekday int // 0-6, Sunday is 0
	Hour    int
	Minute  int
	Second  int // 0-61, leap seconds included
}

// HostTimeOf breaks down t in its own location.
func HostTimeOf(t time.Time) HostTime {
	return HostTime{
		Year:    t.Year() - 1900,
		Month:   int(t.Month()) - 1,
		Day:     t.Day() - 1,
		Weekday: int(t.Weekday()),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Second:  t.Second(),
	}
}

// syncClock writes the host time into the machine's RTC. The century goes
// to RAM at centuryAddr because the RTC has no century register. Nothing
// is written if any field is out of BCD range.
func syncClock(m engine.Machine, centuryAddr uint32, ht HostTime) error {
	year := ht.Year + 1900

	seconds := ht.Second
	if seconds > 59 {
		seconds = 59
	}

	var regs engine.ClockRegisters
	century, err := toBCD(year / 100)
	if err != nil {
		return fmt.Errorf("century: %w", err)
	}
	if regs.Seconds, err = toBCD(seconds); err != nil {
		return fmt.Errorf("seconds: %w", err)
	}
	if regs.Minutes, err = toBCD(ht.Minute); err != nil {
		return fmt.Errorf("minutes: %w", err)
	}
	if regs.Hours, err = toBCD(ht.Hour); err != nil {
		return fmt.Errorf("hours: %w", err)
	}
	if regs.Weekday, err = toBCD(ht.Weekday + 1); err != nil {
		return fmt.Errorf("weekday: %w", err)
	}
	if regs.Day, err = toBCD(ht.Day + 1); err != nil {
		return fmt.Errorf("day: %w", err)
	}
	if regs.Month, err = toBCD(ht.Month + 1); err != nil {
		return fmt.Errorf("month: %w", err)
	}
	if regs.Year, err = toBCD(year % 100); err != nil {
		return fmt.Errorf("year: %w", err)
	}

	m.StoreByte(centuryAddr, century)
	m.SetClock(regs)
	return nil
}

// toBCD converts 0-99 to packed binary-coded decimal.
func toBCD(v int) (uint8, error) {
	if v < 0 || v > 99 {
		return 0, fmt.Errorf("%w: %d", ErrBCDRange, v)
	}
	return uint8(v/10)<<4 | uint8(v%10), nil
}
