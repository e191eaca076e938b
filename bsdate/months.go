package bsdate

// MonthLengths holds the simulated length of each BS month. Index 0 is
// Baishakh (month 1). The table does not vary by year.
var MonthLengths = [12]int{31, 31, 32, 31, 31, 31, 30, 29, 30, 29, 30, 30}

// YearLength is the sum of MonthLengths.
const YearLength = 365

// DefaultMonthLength is returned by MonthLength for months outside 1..12.
const DefaultMonthLength = 30

var monthNames = [12]string{
	"Baishakh",
	"Jestha",
	"Ashadh",
	"Shrawan",
	"Bhadra",
	"Ashwin",
	"Kartik",
	"Mangsir",
	"Poush",
	"Magh",
	"Falgun",
	"Chaitra",
}

// MonthLength returns the number of days in a BS month. The year is accepted
// for symmetry with calendar APIs but does not affect the result.
func MonthLength(month, year int) int {
	_ = year
	if month < 1 || month > 12 {
		return DefaultMonthLength
	}
	return MonthLengths[month-1]
}

// MonthName returns the name of a BS month, or "" for months outside 1..12.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// MonthFromName returns the month number for a BS month name
// (case-sensitive), or 0 if the name is unknown.
func MonthFromName(name string) int {
	for i, n := range monthNames {
		if n == name {
			return i + 1
		}
	}
	return 0
}
