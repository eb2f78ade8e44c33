package timecalc

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTime is returned by ParseTime when no accepted format matches.
var ErrInvalidTime = errors.New("invalid time string")

type field uint8

const (
	fieldYear field = 1 << iota
	fieldMonth
	fieldDay
	fieldHour
	fieldMinute
	fieldSecond
	fieldZone
	// fieldMidnight zeroes the time of day instead of taking it from the reference.
	fieldMidnight
)

type timeFormat struct {
	layout string
	fields field
}

// Formats are tried in order and the first match wins. Several of them
// accept the same input ("12" is a day, "12:30" a time of day), so the order
// is part of the contract.
var timeFormats = []timeFormat{
	{StampLayout, fieldYear | fieldMonth | fieldDay | fieldHour | fieldMinute | fieldSecond | fieldZone},
	{"15:4", fieldHour | fieldMinute},
	{"15:4:5", fieldHour | fieldMinute | fieldSecond},
	{"15-4", fieldHour | fieldMinute},
	{"15-4-5", fieldHour | fieldMinute | fieldSecond},
	{"2/15:4", fieldDay | fieldHour | fieldMinute},
	{"2/15:4:5", fieldDay | fieldHour | fieldMinute | fieldSecond},
	{"2", fieldDay | fieldMidnight},
	{"2/Jan", fieldDay | fieldMonth | fieldMidnight},
	{"1/2/15:4", fieldMonth | fieldDay | fieldHour | fieldMinute},
	{"1/2/15:4:5", fieldMonth | fieldDay | fieldHour | fieldMinute | fieldSecond},
}

// ParseTime parses value with the first matching accepted format. Fields the
// format does not carry are taken from ref, including the location; the
// day-only formats set the time of day to midnight instead.
func ParseTime(value string, ref time.Time) (time.Time, error) {
	for _, f := range timeFormats {
		parsed, err := time.ParseInLocation(f.layout, value, ref.Location())
		if err != nil {
			continue
		}
		return f.merge(parsed, ref, value)
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, value)
}

func (f timeFormat) merge(parsed, ref time.Time, value string) (time.Time, error) {
	pick := func(fl field, p, r int) int {
		if f.fields&fl != 0 {
			return p
		}
		return r
	}

	year := pick(fieldYear, parsed.Year(), ref.Year())
	month := time.Month(pick(fieldMonth, int(parsed.Month()), int(ref.Month())))
	day := pick(fieldDay, parsed.Day(), ref.Day())
	hour := pick(fieldHour, parsed.Hour(), ref.Hour())
	minute := pick(fieldMinute, parsed.Minute(), ref.Minute())
	second := pick(fieldSecond, parsed.Second(), ref.Second())
	if f.fields&fieldMidnight != 0 {
		hour, minute, second = 0, 0, 0
	}
	loc := ref.Location()
	if f.fields&fieldZone != 0 {
		loc = parsed.Location()
	}

	t := time.Date(year, month, day, hour, minute, second, 0, loc)
	if t.Day() != day {
		// e.g. day 31 against a reference in a 30-day month
		return time.Time{}, fmt.Errorf("%w: %q: day out of range", ErrInvalidTime, value)
	}
	return t, nil
}
