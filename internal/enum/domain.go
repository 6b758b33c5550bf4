package enum

type ListState string

const (
	ListStateAll           ListState = "all"
	ListStatePendingDelete ListState = "pending_delete"
	ListStateDeletingToday ListState = "deleting_today"
	ListStateDeleted       ListState = "deleted"
	ListStateMarketplace   ListState = "marketplace"
)

func (t ListState) String() string {
	return string(t)
}

type RegStatus string

const (
	RegStatusPending    RegStatus = "pending"
	RegStatusAvailable  RegStatus = "available"
	RegStatusTaken      RegStatus = "taken"
	RegStatusUnverified RegStatus = "unverified"
)

func (t RegStatus) String() string {
	return string(t)
}

// Availability is the per-domain outcome of a provider check.
type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityTaken     Availability = "taken"
	AvailabilityUnknown   Availability = "unknown"
)

func (t Availability) String() string {
	return string(t)
}
