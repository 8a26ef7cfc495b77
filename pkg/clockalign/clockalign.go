package clockalign

import "time"

// DelayToNextMinuteBoundary returns how long to wait from now until the next
// :00 second of the wall clock in now's location. Always in (0, 1m].
func DelayToNextMinuteBoundary(now time.Time) time.Duration {
	return DelayToNextBoundary(now, time.Minute)
}

// DelayToNextBoundary is DelayToNextMinuteBoundary for an arbitrary tick
// granularity. A non-positive granularity falls back to one minute.
func DelayToNextBoundary(now time.Time, granularity time.Duration) time.Duration {
	if granularity <= 0 {
		granularity = time.Minute
	}
	// Offset from the local midnight so boundaries follow the wall clock of
	// now's zone rather than the Unix epoch.
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	elapsed := now.Sub(midnight) % granularity
	if elapsed < 0 {
		elapsed += granularity
	}
	return granularity - elapsed
}
