package entitlement

import (
	"fmt"

	"github.com/google/uuid"
)

// LimitKey identifies a countable owner resource or metered allowance.
type LimitKey string

// Feature is a string type representing a plan-specific feature flag.
type Feature string

const (
	// Unlimited represents a limit with no cap (-1 chosen for SQL compatibility).
	Unlimited int64 = -1
)

// Owner is a polymorphic billable reference. Limits are always evaluated and
// persisted against the composite (Kind, ID) pair so any tenant type (user,
// team, organization) can be a billable owner.
type Owner struct {
	Kind string
	ID   uuid.UUID
}

// NewOwner returns an Owner for the given kind and id.
func NewOwner(kind string, id uuid.UUID) Owner {
	return Owner{Kind: kind, ID: id}
}

// String renders the composite key as "kind/id", used in log output and
// Redis key construction.
func (o Owner) String() string {
	return fmt.Sprintf("%s/%s", o.Kind, o.ID)
}

// IsZero reports whether the owner reference is empty.
func (o Owner) IsZero() bool {
	return o.Kind == "" && o.ID == uuid.Nil
}

// AfterLimitPolicy controls what happens once usage reaches a limit's amount.
type AfterLimitPolicy string

const (
	// JustWarn never blocks: thresholds and the cap itself only emit warnings.
	JustWarn AfterLimitPolicy = "just_warn"
	// BlockUsage denies any action that would push usage past the amount.
	// No grace is ever granted.
	BlockUsage AfterLimitPolicy = "block_usage"
	// GraceThenBlock allows overage for the configured grace period after the
	// first crossing, then blocks.
	GraceThenBlock AfterLimitPolicy = "grace_then_block"
)

// valid reports whether the policy is one of the known values. The zero value
// is not valid: plans must state their policy explicitly.
func (p AfterLimitPolicy) valid() bool {
	switch p {
	case JustWarn, BlockUsage, GraceThenBlock:
		return true
	}
	return false
}
