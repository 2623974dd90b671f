package mapping

import "fmt"

// Mode governs how several source field values collapse into one
// target value.
type Mode string

const (
	// ModeNone is only valid for single-field rules.
	ModeNone Mode = ""
	// ModeJoin concatenates the truthy values with a single space.
	ModeJoin Mode = "join"
	// ModeChoose takes the first truthy value.
	ModeChoose Mode = "choose"
)

// Rule describes how one target field is computed from a source
// entity. Either Fields or Transform is set, never both. Pre runs on
// each raw field value, Post on the combined result; both are names
// resolved against the adapter registry when the table is validated.
type Rule struct {
	Fields    []string
	Mode      Mode
	Pre       string
	Post      string
	Transform string
}

// Entry binds a target field to its rule. Entries keep their declared
// order so syncs touch fields deterministically.
type Entry struct {
	TargetField string
	Rule        Rule
}

// Table is the declarative mapping for one entity pair and direction.
type Table struct {
	Name    string
	Entries []Entry
}

// Validate fails fast on a malformed table: a rule must carry exactly
// one of fields or transform, multi-field rules must declare a mode,
// and every adapter name must resolve in the registry.
func (t Table) Validate(reg *Registry) error {
	for _, entry := range t.Entries {
		rule := entry.Rule

		hasFields := len(rule.Fields) > 0
		hasTransform := rule.Transform != ""
		if hasFields == hasTransform {
			return fmt.Errorf("table %s, field %s: exactly one of fields or transform must be set",
				t.Name, entry.TargetField)
		}

		if len(rule.Fields) > 1 && rule.Mode != ModeJoin && rule.Mode != ModeChoose {
			return fmt.Errorf("table %s, field %s: multi-field rule requires mode join or choose",
				t.Name, entry.TargetField)
		}
		if len(rule.Fields) <= 1 && rule.Mode != ModeNone {
			return fmt.Errorf("table %s, field %s: mode %q set on single-field rule",
				t.Name, entry.TargetField, rule.Mode)
		}

		if hasTransform {
			if rule.Pre != "" || rule.Post != "" {
				return fmt.Errorf("table %s, field %s: transform rules take no pre/post adapter",
					t.Name, entry.TargetField)
			}
			if _, ok := reg.Transform(rule.Transform); !ok {
				return fmt.Errorf("table %s, field %s: unknown transform %q",
					t.Name, entry.TargetField, rule.Transform)
			}
			continue
		}

		if rule.Pre != "" {
			if _, ok := reg.Adapter(rule.Pre); !ok {
				return fmt.Errorf("table %s, field %s: unknown pre adapter %q",
					t.Name, entry.TargetField, rule.Pre)
			}
		}
		if rule.Post != "" {
			if _, ok := reg.Adapter(rule.Post); !ok {
				return fmt.Errorf("table %s, field %s: unknown post adapter %q",
					t.Name, entry.TargetField, rule.Post)
			}
		}
	}
	return nil
}
