package layout

import (
	"fmt"

	"github.com/tsawler/patro/model"
)

// Truncate decides how many of total items to show in capacity slots. When
// everything fits nothing is hidden. Otherwise the last slot is given to a
// "+N more" label, so shown+more == total and shown+1 <= capacity. With no
// slot at all it returns 0, 0: there is nowhere to put a label, and the
// caller decides what to do with the items.
func Truncate(total, capacity int) (shown, more int) {
	if total <= 0 || capacity <= 0 {
		return 0, 0
	}
	if total <= capacity {
		return total, 0
	}
	if capacity == 1 {
		return 0, total
	}
	shown = capacity - 1
	return shown, total - shown
}

// MoreLabel returns the label for n hidden items.
func MoreLabel(n int) string {
	return fmt.Sprintf("+%d more", n)
}

// FitImage returns the placement of a pxW×pxH image inside box, scaled to
// fit with its aspect ratio preserved and centred.
func FitImage(box model.BBox, pxW, pxH int) model.BBox {
	return box.Fit(float64(pxW), float64(pxH))
}
