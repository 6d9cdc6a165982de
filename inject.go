package firconvert

import (
	"fmt"

	"github.com/ocatools/firconvert/oca"
)

// InjectStats summarizes a multi-channel filter injection.
type InjectStats struct {
	// Attempted counts channels for which a replacement filter was
	// supplied; Succeeded and Failed partition them. Skipped counts
	// container channels with no supplied filter.
	Attempted int
	Succeeded int
	Failed    int
	Skipped   int

	// Warnings carries advisory findings and per-channel failure details.
	// A non-empty list does not imply failure.
	Warnings []string
}

// InjectFilters replaces the container's per-channel filters with the
// supplied sequences, matched by channel index. Channels without a supplied
// filter are left untouched and counted as skipped; per-channel validation
// failures are recorded in the stats rather than aborting the remaining
// channels. When copyLV is true the replacement is also written to the
// channel's low-volume filter slot where one exists.
func InjectFilters(c *oca.Container, filters []Sequence, copyLV bool) InjectStats {
	var stats InjectStats

	for ch := 0; ch < c.NumChannels(); ch++ {
		if ch >= len(filters) || filters[ch].Len() == 0 {
			stats.Skipped++
			continue
		}
		stats.Attempted++

		coeffs := filters[ch].Coeffs
		if msg := oca.AdvisoryCheck(coeffs); msg != "" {
			stats.Warnings = append(stats.Warnings, fmt.Sprintf("channel %d: %s", ch, msg))
		}

		if err := c.Inject(ch, coeffs, copyLV); err != nil {
			stats.Failed++
			stats.Warnings = append(stats.Warnings, fmt.Sprintf("channel %d: %v", ch, err))
			continue
		}
		stats.Succeeded++
	}
	return stats
}
