package interfaces

import "context"

// DomainService exposes one entrypoint per scheduled lifecycle job. Each
// runs to completion or returns the first unrecoverable error; locking and
// timeouts are the orchestrator's concern.
type DomainService interface {
	TransitionPendingDomains(ctx context.Context) error
	RunFirstAvailabilityCheck(ctx context.Context) error
	RunSecondAvailabilityCheck(ctx context.Context) error
	ArchiveExpiredDomains(ctx context.Context) error
	RefreshIdeaOfTheDay(ctx context.Context) error
}
