package chat

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateTime marks input that does not match any accepted
// date/time format. Callers re-prompt; it is never a system fault.
var ErrInvalidDateTime = errors.New("unrecognized date/time format")

// ParseSlotTime parses a free-text "day/month[/year] time" pair, e.g.
// "18/12 14:00", "18/12/2026 às 14h30" or "18/12 14". The year defaults to
// the current one; when the resulting instant is already past and no year
// was supplied, it rolls forward to next year. The result carries now's
// location at minute granularity.
func ParseSlotTime(input string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, "às", " ")

	var parts []string
	for _, tok := range strings.Fields(s) {
		if tok == "as" || tok == "a" {
			continue
		}
		parts = append(parts, tok)
	}
	if len(parts) != 2 {
		return time.Time{}, ErrInvalidDateTime
	}

	day, month, year, yearGiven, err := parseDate(parts[0])
	if err != nil {
		return time.Time{}, err
	}

	hour, minute, err := parseClock(parts[1])
	if err != nil {
		return time.Time{}, err
	}

	if !yearGiven {
		year = now.Year()
	}

	at := time.Date(year, time.Month(month), day, hour, minute, 0, 0, now.Location())
	// time.Date normalizes overflow (e.g. 31/02); reject anything that moved.
	if at.Day() != day || at.Month() != time.Month(month) {
		return time.Time{}, ErrInvalidDateTime
	}

	if !yearGiven && at.Before(now) {
		at = at.AddDate(1, 0, 0)
	}

	return at, nil
}

func parseDate(tok string) (day, month, year int, yearGiven bool, err error) {
	fields := strings.Split(tok, "/")
	if len(fields) < 2 || len(fields) > 3 {
		return 0, 0, 0, false, ErrInvalidDateTime
	}

	day, err = atoi(fields[0])
	if err != nil {
		return 0, 0, 0, false, err
	}
	month, err = atoi(fields[1])
	if err != nil {
		return 0, 0, 0, false, err
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return 0, 0, 0, false, ErrInvalidDateTime
	}

	if len(fields) == 3 {
		year, err = atoi(fields[2])
		if err != nil {
			return 0, 0, 0, false, err
		}
		if year < 100 {
			year += 2000
		}
		yearGiven = true
	}

	return day, month, year, yearGiven, nil
}

func parseClock(tok string) (hour, minute int, err error) {
	// tolerate "14h" and "14h30"
	tok = strings.TrimSuffix(tok, "h")
	tok = strings.ReplaceAll(tok, "h", ":")

	var hourPart, minutePart string
	if idx := strings.Index(tok, ":"); idx >= 0 {
		hourPart, minutePart = tok[:idx], tok[idx+1:]
	} else {
		hourPart, minutePart = tok, "0"
	}

	hour, err = atoi(hourPart)
	if err != nil {
		return 0, 0, err
	}
	minute, err = atoi(minutePart)
	if err != nil {
		return 0, 0, err
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidDateTime
	}

	return hour, minute, nil
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidDateTime
	}
	return n, nil
}
