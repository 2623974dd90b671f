package mapping

import (
	"strings"

	"github.com/nuxeo/mkto-pd-sync-app/internal/crm"
)

// Resolve computes the new value for one target field from a source
// entity. Transform rules hand the whole entity to the transform;
// field rules read each source field in declared order, run the pre
// adapter on every raw value, reduce to one value by mode, then run
// the post adapter on the result.
func Resolve(rule Rule, source *crm.Entity, reg *Registry) any {
	if rule.Transform != "" {
		transform, ok := reg.Transform(rule.Transform)
		if !ok {
			return nil
		}
		return transform(source)
	}

	collected := make([]any, 0, len(rule.Fields))
	for _, field := range rule.Fields {
		raw := source.Get(field)
		if rule.Pre != "" {
			if pre, ok := reg.Adapter(rule.Pre); ok {
				raw = pre(raw)
			}
		}
		collected = append(collected, raw)
	}

	var value any
	switch {
	case len(collected) == 0:
		value = nil
	case len(collected) == 1:
		value = collected[0]
	case rule.Mode == ModeJoin:
		value = joinValues(collected)
	case rule.Mode == ModeChoose:
		value = chooseValue(collected)
	}

	if rule.Post != "" {
		if post, ok := reg.Adapter(rule.Post); ok {
			value = post(value)
		}
	}
	return value
}

// joinValues concatenates the truthy values with a single space; falsy
// entries contribute nothing, not even a separator. A blank result
// reads as empty.
func joinValues(values []any) any {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if crm.IsTruthy(v) {
			parts = append(parts, crm.String(v))
		}
	}
	joined := strings.Join(parts, " ")
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	return joined
}

// chooseValue takes the first truthy value, or empty when all are
// falsy.
func chooseValue(values []any) any {
	for _, v := range values {
		if crm.IsTruthy(v) {
			return v
		}
	}
	return nil
}
