package bsdate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ad(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestMonthLengthTable(t *testing.T) {
	total := 0
	for m := 1; m <= 12; m++ {
		total += MonthLength(m, 2080)
	}
	assert.Equal(t, YearLength, total, "month table was edited")
	assert.Equal(t, 365, total)
}

func TestMonthLengthOutOfRange(t *testing.T) {
	for _, m := range []int{-1, 0, 13, 99} {
		assert.Equal(t, DefaultMonthLength, MonthLength(m, 2080), "month %d", m)
	}
}

func TestMonthLengthIgnoresYear(t *testing.T) {
	for m := 1; m <= 12; m++ {
		assert.Equal(t, MonthLength(m, 2000), MonthLength(m, 2100))
	}
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "Baishakh", MonthName(1))
	assert.Equal(t, "Chaitra", MonthName(12))
	assert.Equal(t, "", MonthName(0))
	assert.Equal(t, 10, MonthFromName("Magh"))
	assert.Equal(t, 0, MonthFromName("magh"))
}

func TestToBS(t *testing.T) {
	tests := []struct {
		name  string
		in    time.Time
		year  int
		month int
		day   int
	}{
		{"mid january", ad(2024, time.January, 15), 2080, 10, 2},
		{"no overflow", ad(2024, time.February, 5), 2080, 10, 22},
		{"month carries into year", ad(2024, time.May, 1), 2081, 1, 18},
		{"day carries into month", ad(2024, time.April, 14), 2081, 1, 1},
		{"end of year", ad(2024, time.April, 13), 2080, 12, 30},
		{"december", ad(2023, time.December, 31), 2080, 9, 19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToBS(tt.in)
			assert.Equal(t, tt.year, got.Year)
			assert.Equal(t, tt.month, got.Month)
			assert.Equal(t, tt.day, got.Day)
			assert.Equal(t, MonthName(tt.month), got.MonthName)
			assert.Equal(t, tt.in.Weekday(), got.Weekday)
			assert.False(t, got.Clamped)
		})
	}
}

func TestToBSInvariants(t *testing.T) {
	start := ad(2020, time.January, 1)
	for i := 0; i < 366*4; i++ {
		d := ToBS(start.AddDate(0, 0, i))
		require.GreaterOrEqual(t, d.Month, 1)
		require.LessOrEqual(t, d.Month, 12)
		require.GreaterOrEqual(t, d.Day, 1)
		require.LessOrEqual(t, d.Day, MonthLength(d.Month, d.Year))
	}
}

func TestScenarioJanuary15(t *testing.T) {
	bs := ToBS(ad(2024, time.January, 15))
	require.Equal(t, 2080, bs.Year)
	assert.Equal(t, "2080 Magh 2", bs.String())

	c := ToAD(bs.Day, bs.Month, bs.Year)
	require.True(t, c.Exact)
	assert.LessOrEqual(t, c.Iterations, MaxIterations)
	assert.True(t, c.Time.Equal(ad(2024, time.January, 15)))
	assert.NoError(t, c.Err())
}

func TestToADExact(t *testing.T) {
	tests := []struct {
		day, month, year int
		want             time.Time
	}{
		{1, 1, 2081, ad(2024, time.April, 14)},
		{30, 12, 2080, ad(2024, time.April, 13)},
		{1, 3, 2081, ad(2024, time.June, 15)},
		{18, 11, 2081, ad(2025, time.March, 1)},
	}

	for _, tt := range tests {
		c := ToAD(tt.day, tt.month, tt.year)
		require.True(t, c.Exact, "%d-%d-%d", tt.year, tt.month, tt.day)
		assert.True(t, c.Time.Equal(tt.want), "got %s want %s", c.Time, tt.want)
	}
}

func TestToADUnreachableDate(t *testing.T) {
	// 2025 is not a leap year, so no February day lands on Falgun 17.
	c := ToAD(17, 11, 2081)
	assert.False(t, c.Exact)
	assert.ErrorIs(t, c.Err(), ErrInexact)
	assert.LessOrEqual(t, c.Iterations, MaxIterations)

	got := ToBS(c.Time)
	assert.Equal(t, 11, got.Month)
	assert.InDelta(t, 17, got.Day, 1)
}

func TestToADInvalidDateStops(t *testing.T) {
	c := ToAD(40, 1, 2081)
	assert.False(t, c.Exact)
	assert.LessOrEqual(t, c.Iterations, MaxIterations)
}

func TestRoundTrip(t *testing.T) {
	for _, year := range []int{2070, 2078, 2080, 2081, 2090} {
		total, exact := 0, 0
		var drift []string
		for month := 1; month <= 12; month++ {
			for day := 1; day <= MonthLength(month, year); day++ {
				total++
				c := ToAD(day, month, year)
				back := ToBS(c.Time)
				if back.Year == year && back.Month == month && back.Day == day {
					exact++
					continue
				}
				drift = append(drift, back.ISO())
			}
		}
		ratio := float64(exact) / float64(total)
		if len(drift) > 0 {
			t.Logf("year %d: %d boundary dates drift: %v", year, len(drift), drift)
		}
		assert.GreaterOrEqual(t, ratio, 0.95, "year %d", year)
	}
}

func TestNew(t *testing.T) {
	d, err := New(2, 10, 2080)
	require.NoError(t, err)
	assert.Equal(t, "Magh", d.MonthName)
	assert.Equal(t, time.Monday, d.Weekday)

	_, err = New(33, 3, 2080)
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = New(1, 13, 2080)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateOrdering(t *testing.T) {
	a := Date{Year: 2080, Month: 12, Day: 30}
	b := Date{Year: 2081, Month: 1, Day: 1}
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, a.Equal(Date{Year: 2080, Month: 12, Day: 30, MonthName: "x"}))
	assert.Equal(t, "2080-12-30", a.ISO())
}

func TestYearSpan(t *testing.T) {
	first, last := YearSpan(2081)
	require.True(t, first.Exact)
	require.True(t, last.Exact)
	assert.Equal(t, YearLength-1, int(last.Time.Sub(first.Time).Hours()/24))
}
