package models

import (
	"time"

	"basketwise/pkg/domain"
)

// Signup is one waitlist registration for a region.
type Signup struct {
	ID        domain.SignupID
	Name      string
	Email     string
	RegionID  domain.RegionID
	CreatedAt time.Time
}
