package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	er "github.com/nametracker/nametracker/internal/errors"
)

func TestExtensionOf(t *testing.T) {
	tests := []struct {
		name    string
		domain  string
		want    string
		wantErr bool
	}{
		{"simple com", "example.com", "com", false},
		{"uppercase normalized", "EXAMPLE.IO", "io", false},
		{"subdomain keeps last suffix", "dev.example.ai", "ai", false},
		{"whitespace trimmed", "  example.co  ", "co", false},
		{"no dot", "example", "", true},
		{"trailing dot", "example.", "", true},
		{"leading dot only", ".com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtensionOf(tt.domain)
			if tt.wantErr {
				assert.ErrorIs(t, err, er.ErrUnknownExtension)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDerivesFields(t *testing.T) {
	dropDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	d := Domain{Domain: "example.com", DropDate: dropDate}

	require.NoError(t, d.Normalize())

	assert.Equal(t, "com", d.Extension)
	assert.Equal(t, time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC), d.DropTime)

	// re-normalizing yields identical derived fields
	before := d
	require.NoError(t, d.Normalize())
	assert.Equal(t, before.Extension, d.Extension)
	assert.Equal(t, before.DropTime, d.DropTime)
}

func TestNormalizeRejectsUnknownExtension(t *testing.T) {
	d := Domain{Domain: "noextension", DropDate: time.Now()}
	assert.ErrorIs(t, d.Normalize(), er.ErrUnknownExtension)
}

func TestDropTimeForUnknownExtensionFallsBackToMidnight(t *testing.T) {
	dropDate := time.Date(2025, 3, 10, 13, 45, 0, 0, time.UTC)
	got := DropTimeFor(dropDate, "xyz")
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestCheckDelayFor(t *testing.T) {
	delay, ok := CheckDelayFor("com")
	assert.True(t, ok)
	assert.Equal(t, 2*time.Hour, delay)

	delay, ok = CheckDelayFor("io")
	assert.True(t, ok)
	assert.Equal(t, 6*time.Hour, delay)

	_, ok = CheckDelayFor("xyz")
	assert.False(t, ok)
}

func TestCheckableExtensionsStable(t *testing.T) {
	assert.Equal(t, []string{"ai", "co", "com", "io"}, CheckableExtensions())
}
