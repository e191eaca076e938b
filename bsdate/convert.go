package bsdate

import (
	"errors"
	"fmt"
	"time"
)

// Fixed offsets between an AD date and its simulated BS date.
const (
	YearOffset  = 56
	MonthOffset = 8
	DayOffset   = 17
)

// MaxIterations bounds the refinement loop in ToAD.
const MaxIterations = 60

// Coarse refinement steps used by ToAD, in days.
const (
	yearStepDays  = 365
	monthStepDays = 20
)

var (
	// ErrInexact reports that ToAD exhausted its iteration budget without
	// reproducing the requested BS date.
	ErrInexact = errors.New("bsdate: conversion did not converge")

	// ErrInvalidDate reports a BS month or day outside the simulated calendar.
	ErrInvalidDate = errors.New("bsdate: invalid date")
)

// Date is a date in the simulated BS calendar.
type Date struct {
	Year      int
	Month     int // 1..12
	Day       int // 1..MonthLength(Month, Year)
	MonthName string
	Weekday   time.Weekday

	// Clamped is set when ToBS had to force the month or day into range.
	Clamped bool
}

// New validates a BS date and fills in its month name and weekday.
func New(day, month, year int) (Date, error) {
	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}
	if day < 1 || day > MonthLength(month, year) {
		return Date{}, fmt.Errorf("%w: day %d of %s", ErrInvalidDate, day, MonthName(month))
	}
	c := ToAD(day, month, year)
	return Date{
		Year:      year,
		Month:     month,
		Day:       day,
		MonthName: MonthName(month),
		Weekday:   c.Time.Weekday(),
	}, nil
}

// String formats the date as "2080 Magh 2".
func (d Date) String() string {
	return fmt.Sprintf("%d %s %d", d.Year, d.MonthName, d.Day)
}

// ISO formats the date as "2080-10-02".
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Equal reports whether two dates name the same year, month and day.
func (d Date) Equal(other Date) bool {
	return d.Year == other.Year && d.Month == other.Month && d.Day == other.Day
}

// Before reports whether d falls before other.
func (d Date) Before(other Date) bool {
	return d.ordinal() < other.ordinal()
}

// ordinal numbers days continuously across the simulated calendar.
func (d Date) ordinal() int {
	n := d.Year * YearLength
	for m := 1; m < d.Month && m <= 12; m++ {
		n += MonthLengths[m-1]
	}
	return n + d.Day
}

// ToBS converts an AD date to the simulated BS calendar.
func ToBS(t time.Time) Date {
	year := t.Year() + YearOffset
	month := int(t.Month()) + MonthOffset
	day := t.Day() + DayOffset

	if month > 12 {
		month -= 12
		year++
	}
	if n := MonthLength(month, year); day > n {
		day -= n
		month++
		if month > 12 {
			month -= 12
			year++
		}
	}

	d := Date{Year: year, Weekday: t.Weekday()}
	d.Month = clamp(month, 1, 12)
	d.Day = clamp(day, 1, MonthLength(d.Month, year))
	d.Clamped = d.Month != month || d.Day != day
	d.MonthName = MonthName(d.Month)
	return d
}

// Today returns the BS date for now.
func Today(now time.Time) Date {
	return ToBS(now)
}

// Conversion is the result of a BS to AD conversion.
type Conversion struct {
	// Time is the AD date at midnight UTC.
	Time time.Time

	// Exact is false when the search returned its last candidate without
	// reproducing the requested BS date.
	Exact bool

	// Iterations is the number of candidates examined.
	Iterations int
}

// Err returns ErrInexact for an inexact conversion and nil otherwise.
func (c Conversion) Err() error {
	if c.Exact {
		return nil
	}
	return ErrInexact
}

// ToAD converts a BS date to AD with a bounded search. The first candidate
// reverses the fixed offsets; each further step converts the candidate back
// with ToBS and moves it by a full year per year of error, about twenty days
// per month of error, or the exact day difference. A step never moves
// further than the day distance between the two BS dates.
func ToAD(day, month, year int) Conversion {
	target := Date{Year: year, Month: month, Day: day}
	candidate := time.Date(year-YearOffset, time.Month(month-MonthOffset), day-DayOffset, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= MaxIterations; i++ {
		got := ToBS(candidate)
		if got.Equal(target) {
			return Conversion{Time: candidate, Exact: true, Iterations: i}
		}
		if i == MaxIterations {
			break
		}
		step := correction(got, target)
		if step == 0 {
			// The target is not a valid date; no move can reach it.
			return Conversion{Time: candidate, Exact: false, Iterations: i}
		}
		candidate = candidate.AddDate(0, 0, step)
	}

	return Conversion{Time: candidate, Exact: false, Iterations: MaxIterations}
}

// correction picks the next step for ToAD.
func correction(got, target Date) int {
	var coarse int
	switch {
	case got.Year != target.Year:
		coarse = (target.Year - got.Year) * yearStepDays
	case got.Month != target.Month:
		coarse = (target.Month - got.Month) * monthStepDays
	default:
		return target.Day - got.Day
	}

	distance := target.ordinal() - got.ordinal()
	if abs(distance) < abs(coarse) {
		return distance
	}
	return coarse
}

// YearSpan returns the AD conversions of the first and last day of a BS year.
func YearSpan(year int) (first, last Conversion) {
	first = ToAD(1, 1, year)
	last = ToAD(MonthLength(12, year), 12, year)
	return first, last
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
