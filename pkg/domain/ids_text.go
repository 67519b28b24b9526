package domain

import "github.com/google/uuid"

// MarshalText/UnmarshalText implementations so typed IDs round-trip through
// JSON (including as map keys for price maps) and the redis cache.

func (id RegionID) MarshalText() ([]byte, error)  { return marshalID(uuid.UUID(id)) }
func (id StoreID) MarshalText() ([]byte, error)   { return marshalID(uuid.UUID(id)) }
func (id ProductID) MarshalText() ([]byte, error) { return marshalID(uuid.UUID(id)) }
func (id BundleID) MarshalText() ([]byte, error)  { return marshalID(uuid.UUID(id)) }
func (id SignupID) MarshalText() ([]byte, error)  { return marshalID(uuid.UUID(id)) }
func (id SessionID) MarshalText() ([]byte, error) { return marshalID(uuid.UUID(id)) }

func (id *RegionID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = RegionID(u)
	return err
}

func (id *StoreID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = StoreID(u)
	return err
}

func (id *ProductID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = ProductID(u)
	return err
}

func (id *BundleID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = BundleID(u)
	return err
}

func (id *SignupID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = SignupID(u)
	return err
}

func (id *SessionID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = SessionID(u)
	return err
}

func marshalID(u uuid.UUID) ([]byte, error) {
	return []byte(u.String()), nil
}
