package models

import "fmt"

// EntityKind tags an EntityRef.
type EntityKind uint8

const (
	EntityNone EntityKind = iota
	EntityProperty
	EntityCustomer
	EntityViewing
)

// Storage encodings of EntityKind.
const (
	EntityTypeProperty = "PROPERTY"
	EntityTypeCustomer = "CUSTOMER"
	EntityTypeViewing  = "VIEWING"
)

// EntityRef points at a property, customer or viewing, or at nothing.
// It is flattened to (entity_type, entity_id) only when persisted.
type EntityRef struct {
	Kind EntityKind
	ID   uint
}

func PropertyRef(id uint) EntityRef { return EntityRef{Kind: EntityProperty, ID: id} }
func CustomerRef(id uint) EntityRef { return EntityRef{Kind: EntityCustomer, ID: id} }
func ViewingRef(id uint) EntityRef  { return EntityRef{Kind: EntityViewing, ID: id} }

// Referenced is implemented by records that can be the target of a task.
type Referenced interface {
	Ref() EntityRef
}

func (r EntityRef) IsNone() bool {
	return r.Kind == EntityNone
}

// Type returns the storage encoding of the kind, or "" for None.
func (r EntityRef) Type() string {
	switch r.Kind {
	case EntityProperty:
		return EntityTypeProperty
	case EntityCustomer:
		return EntityTypeCustomer
	case EntityViewing:
		return EntityTypeViewing
	}
	return ""
}

// Encode returns the two-column storage form.
func (r EntityRef) Encode() (string, *uint) {
	if r.IsNone() {
		return "", nil
	}
	id := r.ID
	return r.Type(), &id
}

// DecodeEntityRef is the inverse of Encode. Unknown types decode to None.
func DecodeEntityRef(entityType string, id *uint) EntityRef {
	if id == nil {
		return EntityRef{}
	}
	switch entityType {
	case EntityTypeProperty:
		return PropertyRef(*id)
	case EntityTypeCustomer:
		return CustomerRef(*id)
	case EntityTypeViewing:
		return ViewingRef(*id)
	}
	return EntityRef{}
}

func (r EntityRef) String() string {
	if r.IsNone() {
		return "none"
	}
	return fmt.Sprintf("%s:%d", r.Type(), r.ID)
}
