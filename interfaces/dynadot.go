package interfaces

import (
	"context"

	"github.com/nametracker/nametracker/internal/enum"
)

// DynadotService wraps the Dynadot bulk availability API. One call per
// batch; the caller partitions to the provider's batch cap.
type DynadotService interface {
	// CheckBulkAvailability returns an availability per requested name.
	// Names absent or ambiguous in the provider response map to unknown.
	// Exhausted retries surface errors.ErrProviderUnavailable.
	CheckBulkAvailability(ctx context.Context, domains []string) (map[string]enum.Availability, error)

	// BatchCap is the maximum number of names accepted per call.
	BatchCap() int
}
