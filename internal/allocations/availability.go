package allocations

import (
	"time"

	"github.com/clodobox/EventGear/pkg/metadata"
	"github.com/clodobox/EventGear/pkg/models"
)

// Window is an inclusive calendar date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps uses inclusive boundaries: a project ending the day another
// starts conflicts with it (same-day handover counts as double-booked).
func (w Window) Overlaps(other Window) bool {
	return !w.Start.After(other.End) && !other.Start.After(w.End)
}

func (w Window) Valid() bool {
	return !w.End.Before(w.Start)
}

// Available derives the quantity free for a new reservation in the given
// window. It is recomputed from the active-allocation set at every
// reservation decision; no cached counter is consulted.
func Available(quantityTotal int, window Window, active []models.ActiveAllocation) int {
	return quantityTotal - committed(active, &window)
}

// Outstanding sums the committed, not-yet-returned quantity over all
// windows. Used when shrinking stock or deactivating an item.
func Outstanding(active []models.ActiveAllocation) int {
	return committed(active, nil)
}

func committed(active []models.ActiveAllocation, window *Window) int {
	var sum int
	for _, allocation := range active {
		if allocation.ProjectStatus == metadata.ProjectCanceled.String() {
			continue
		}
		if allocation.Retired() {
			continue
		}
		if window != nil && !window.Overlaps(Window{Start: allocation.ProjectStart, End: allocation.ProjectEnd}) {
			continue
		}
		sum += allocation.Outstanding()
	}
	return sum
}
