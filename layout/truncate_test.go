package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tsawler/patro/model"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		total, capacity int
		shown, more     int
	}{
		{0, 3, 0, 0},
		{2, 3, 2, 0},
		{3, 3, 3, 0},
		{4, 3, 2, 2},
		{10, 4, 3, 7},
		{5, 1, 0, 5},
		{5, 0, 0, 0},
		{5, -1, 0, 0},
	}
	for _, tt := range tests {
		shown, more := Truncate(tt.total, tt.capacity)
		assert.Equal(t, tt.shown, shown, "Truncate(%d, %d) shown", tt.total, tt.capacity)
		assert.Equal(t, tt.more, more, "Truncate(%d, %d) more", tt.total, tt.capacity)
	}
}

func TestTruncateAccountsForEveryItem(t *testing.T) {
	for total := 0; total <= 40; total++ {
		for capacity := 0; capacity <= 12; capacity++ {
			shown, more := Truncate(total, capacity)
			if capacity == 0 {
				assert.Zero(t, shown+more, "no slot for a label")
				continue
			}
			assert.Equal(t, total, shown+more)
			if more > 0 {
				assert.LessOrEqual(t, shown+1, capacity)
			}
			if total <= capacity {
				assert.Zero(t, more)
			}
		}
	}
}

func TestMoreLabel(t *testing.T) {
	assert.Equal(t, "+3 more", MoreLabel(3))
}

func TestFitImage(t *testing.T) {
	box := model.NewBBox(0, 0, 60, 40)
	got := FitImage(box, 1200, 400)
	assert.InDelta(t, 60, got.Width, 1e-9)
	assert.InDelta(t, 20, got.Height, 1e-9)
	assert.InDelta(t, 10, got.Y, 1e-9)
}
