package models

import (
	"sort"
	"time"
)

// ExtensionCheckDelays is how long after drop_time a first availability check
// is allowed per extension. Extensions absent from this table are never
// selected for checking.
var ExtensionCheckDelays = map[string]time.Duration{
	"com": 2 * time.Hour,
	"co":  2 * time.Hour,
	"io":  6 * time.Hour,
	"ai":  12 * time.Hour,
}

// extensionDropOffsets is the time of day (UTC, offset from midnight) each
// registry runs its drop. Unknown extensions fall back to midnight.
var extensionDropOffsets = map[string]time.Duration{
	"com": 18 * time.Hour,
	"co":  18 * time.Hour,
	"io":  14 * time.Hour,
	"ai":  15 * time.Hour,
}

// DropTimeFor combines a drop date with the extension's drop time of day.
func DropTimeFor(dropDate time.Time, extension string) time.Time {
	base := time.Date(dropDate.Year(), dropDate.Month(), dropDate.Day(), 0, 0, 0, 0, time.UTC)
	return base.Add(extensionDropOffsets[extension])
}

// CheckDelayFor reports the post-drop check delay for an extension, false if
// the extension is not checkable.
func CheckDelayFor(extension string) (time.Duration, bool) {
	delay, ok := ExtensionCheckDelays[extension]
	return delay, ok
}

// CheckableExtensions returns the extensions with a configured check delay,
// sorted so generated SQL is stable.
func CheckableExtensions() []string {
	exts := make([]string, 0, len(ExtensionCheckDelays))
	for ext := range ExtensionCheckDelays {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
