package models

import (
	"basketwise/pkg/domain"
)

// RegionTier is a region's rollout status, controlling which flow a client
// shows (live catalog vs. waitlist).
type RegionTier string

const (
	TierActive  RegionTier = "active"
	TierSensing RegionTier = "sensing"
	TierBeta    RegionTier = "beta"
	TierDormant RegionTier = "dormant"
)

// ValidTier reports whether t is a known rollout tier.
func ValidTier(t RegionTier) bool {
	switch t {
	case TierActive, TierSensing, TierBeta, TierDormant:
		return true
	}
	return false
}

// SubAreaAll is the sentinel sub-area meaning "no locality filter".
const SubAreaAll = "All"

// Region is immutable reference data: loaded once at startup and never
// mutated by the valuation core.
type Region struct {
	ID              domain.RegionID
	Name            string
	Slug            string
	Lat             float64
	Lng             float64
	Tier            RegionTier
	WaitlistCount   int
	LaunchReadiness int // 0-100
	// LegacyUnits is non-empty for a merged metro region: the names of the
	// legacy administrative units it absorbed. Stores still tagged with
	// either unit belong to this region's scope.
	LegacyUnits []string
}

// Merged reports whether this region absorbed legacy administrative units.
func (r *Region) Merged() bool { return len(r.LegacyUnits) > 0 }

// Store belongs to exactly one region. District carries the legacy
// administrative unit tag; Locality is the free-text sub-area label.
type Store struct {
	ID        domain.StoreID
	Name      string
	RegionID  domain.RegionID
	Chain     string
	IsPremium bool
	District  string
	Locality  string
	Lat       float64
	Lng       float64
}
