package crm

import "fmt"

// FieldKind tells the accessor how a field's raw value is stored.
type FieldKind int

const (
	// Plain fields hold their value directly.
	Plain FieldKind = iota
	// Enum fields store an option id and decode to its label on read.
	Enum
	// Related fields store another entity's id.
	Related
)

// FieldDef describes one field of an entity kind: the logical name the
// mapping tables use, the storage key the remote API uses, and how the
// raw value is interpreted.
type FieldDef struct {
	Name    string
	Key     string
	Kind    FieldKind
	Options map[string]string // enum option id -> label
	Related string            // related entity type
}

// Schema is the static field table for one entity kind.
type Schema struct {
	Entity  string
	IDField string // storage key of the identity field
	Fields  []FieldDef
}

func (s Schema) field(name string) (FieldDef, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// Entity is one synchronizable record, either freshly constructed or
// loaded from a remote CRM. Field access goes through the schema so
// logical names, storage keys and enum decoding stay in one place.
type Entity struct {
	schema Schema
	data   Record
}

func NewEntity(schema Schema) *Entity {
	return &Entity{
		schema: schema,
		data:   Record{},
	}
}

func (e *Entity) Type() string {
	return e.schema.Entity
}

// Init merges a loaded record into the entity. Only keys the schema
// knows about are kept, so a persist never echoes back fields outside
// the entity's field table.
func (e *Entity) Init(data Record) {
	for k, v := range data {
		if e.knowsKey(k) {
			e.data[k] = v
		}
	}
}

func (e *Entity) knowsKey(key string) bool {
	if key == e.schema.IDField {
		return true
	}
	for _, f := range e.schema.Fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

// ID returns the entity's identity value, or nil when the entity has
// not been persisted yet.
func (e *Entity) ID() any {
	v := flatten(e.data[e.schema.IDField])
	if IsEmpty(v) {
		return nil
	}
	return v
}

func (e *Entity) SetID(id any) {
	e.data[e.schema.IDField] = id
}

// Has reports whether the entity kind carries the field at all. Fields
// outside the schema are only present once explicitly set.
func (e *Entity) Has(name string) bool {
	if _, ok := e.schema.field(name); ok {
		return true
	}
	_, set := e.data[name]
	return set
}

// Get reads a field by logical name: the storage key is remapped,
// complex values are flattened and enum option ids decode to their
// label. An unknown enum option reads as empty.
func (e *Entity) Get(name string) any {
	def, ok := e.schema.field(name)
	if !ok {
		return flatten(e.data[name])
	}

	v := flatten(e.data[def.Key])
	if v == nil {
		return nil
	}

	if def.Kind == Enum {
		label, found := def.Options[String(v)]
		if !found {
			return ""
		}
		return label
	}

	return v
}

// Set writes a field by logical name. Values are stored as given; enum
// encoding back to option ids is the mapping table's responsibility.
func (e *Entity) Set(name string, v any) {
	if def, ok := e.schema.field(name); ok {
		e.data[def.Key] = v
		return
	}
	e.data[name] = v
}

// Payload returns the entity data in remote input format: every set
// field under its storage key, complex values flattened to their id.
func (e *Entity) Payload() Record {
	data := Record{}
	for k, v := range e.data {
		data[k] = flatten(v)
	}
	return data
}

func (e *Entity) String() string {
	return fmt.Sprintf("%s(id=%v)", e.schema.Entity, e.ID())
}

// flatten collapses the complex shapes the remote APIs wrap values in:
// {"value": x} objects, lists of labelled values with a primary entry,
// and {"id": x} references.
func flatten(v any) any {
	switch val := v.(type) {
	case map[string]any:
		if inner, ok := val["value"]; ok {
			return inner
		}
		if inner, ok := val["id"]; ok {
			return inner
		}
		return v
	case []any:
		for _, entry := range val {
			if m, ok := entry.(map[string]any); ok {
				if primary, _ := m["primary"].(bool); primary {
					return m["value"]
				}
			}
		}
		return v
	default:
		return v
	}
}
