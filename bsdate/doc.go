// Package bsdate converts between Gregorian (AD) dates and a simulated
// Bikram Sambat (BS) calendar.
//
// The BS calendar here is a rough simulation, not an astronomical one. Every
// BS year has the same twelve month lengths (see [MonthLengths]) and dates are
// derived from AD dates with fixed offsets.
//
// # AD to BS
//
// [ToBS] adds 56 years, 8 months and 17 days to an AD date and normalizes the
// overflow into the following month and year:
//
//	d := bsdate.ToBS(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
//	fmt.Println(d) // 2080 Magh 2
//
// Results that had to be clamped into a valid month or day report
// Clamped = true so callers can display them as approximate.
//
// # BS to AD
//
// There is no closed form for the inverse. [ToAD] makes a first guess with the
// same offsets and refines it with a bounded search of at most
// [MaxIterations] steps:
//
//	c := bsdate.ToAD(2, 10, 2080)
//	if !c.Exact {
//	    // best effort; show as approximate
//	}
//
// A small number of BS dates are not produced by any AD date under these
// offsets; for those the search exhausts its budget and returns the last
// candidate with Exact = false.
package bsdate
