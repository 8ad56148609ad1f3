package utils

import (
	"time"
)

const (
	// UniversalTicksPerSecond is the resolution of the universal time scale: one tick is 100ns.
	UniversalTicksPerSecond = int64(time.Second / universalTick)

	universalTick = 100 * time.Nanosecond

	// utsEpochOffsetFromUnixEpochInSeconds is the number of seconds from 0001-01-01T00:00:00Z to the unix epoch.
	utsEpochOffsetFromUnixEpochInSeconds = int64(719162 * 24 * 60 * 60)
)

// ToUniversal converts a time into the universal time scale: the number of 100ns ticks since
// 0001-01-01T00:00:00Z. Precision finer than a tick is truncated.
func ToUniversal(t time.Time) int64 {
	seconds := t.Unix() + utsEpochOffsetFromUnixEpochInSeconds
	return seconds*UniversalTicksPerSecond + int64(t.Nanosecond())/int64(universalTick)
}

// FromUniversal converts a count of universal time scale ticks back into a UTC time.
func FromUniversal(ticks int64) time.Time {
	seconds, rem := ticks/UniversalTicksPerSecond, ticks%UniversalTicksPerSecond
	if rem < 0 {
		rem += UniversalTicksPerSecond
		seconds--
	}
	return time.Unix(seconds-utsEpochOffsetFromUnixEpochInSeconds, rem*int64(universalTick)).UTC()
}
