package domain

import (
	"github.com/google/uuid"

	dErrors "basketwise/pkg/domain-errors"
)

// Typed IDs keep region/store/product references from being mixed up at
// compile time. All are UUID-backed.
type (
	RegionID  uuid.UUID
	StoreID   uuid.UUID
	ProductID uuid.UUID
	BundleID  uuid.UUID
	SignupID  uuid.UUID
	SessionID uuid.UUID
)

func (id RegionID) String() string  { return uuid.UUID(id).String() }
func (id StoreID) String() string   { return uuid.UUID(id).String() }
func (id ProductID) String() string { return uuid.UUID(id).String() }
func (id BundleID) String() string  { return uuid.UUID(id).String() }
func (id SignupID) String() string  { return uuid.UUID(id).String() }
func (id SessionID) String() string { return uuid.UUID(id).String() }

func (id RegionID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id StoreID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ProductID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SignupID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}

// ParseRegionID validates and returns a RegionID.
func ParseRegionID(s string) (RegionID, error) {
	u, err := parseUUID(s)
	return RegionID(u), err
}

// ParseStoreID validates and returns a StoreID.
func ParseStoreID(s string) (StoreID, error) {
	u, err := parseUUID(s)
	return StoreID(u), err
}

// ParseProductID validates and returns a ProductID.
func ParseProductID(s string) (ProductID, error) {
	u, err := parseUUID(s)
	return ProductID(u), err
}

// ParseBundleID validates and returns a BundleID.
func ParseBundleID(s string) (BundleID, error) {
	u, err := parseUUID(s)
	return BundleID(u), err
}

// ParseSessionID validates and returns a SessionID.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s)
	return SessionID(u), err
}
