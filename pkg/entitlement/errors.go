package entitlement

import "errors"

// Domain errors for plan catalog operations
var (
	ErrPlanNotFound             = errors.New("entitlement plan not found")
	ErrNoDefaultPlan            = errors.New("no default entitlement plan configured")
	ErrInvalidPlanConfiguration = errors.New("invalid entitlement plan configuration")

	ErrFailedToLoadPlans   = errors.New("failed to load entitlement plans")
	ErrFailedToResolvePlan = errors.New("failed to resolve entitlement plan for owner")
)
