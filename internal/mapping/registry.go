package mapping

import "github.com/nuxeo/mkto-pd-sync-app/internal/crm"

// AdapterFunc transforms one field value.
type AdapterFunc func(any) any

// TransformFunc computes a target value from the whole source entity.
type TransformFunc func(*crm.Entity) any

// Resolver is the related-entity lookup surface the side-effectful
// adapters need. It is implemented by the sync layer so recursive
// sub-synchronization stays an explicit call, not something hidden in a
// value transform.
type Resolver interface {
	// CompanyToOrgID finds or creates the Pipedrive organization for a
	// Marketo lead's company and returns its id, or nil without one.
	CompanyToOrgID(lead *crm.Entity) any
	// OrganizationToExternalID finds or creates the Marketo company for
	// a Pipedrive organization id and returns its external company id.
	OrganizationToExternalID(orgID any) any
	// UserNameToID resolves a Pipedrive user name to its id, nil when
	// unknown.
	UserNameToID(name any) any
	// UserNameToIDOrDefault resolves a user name to its id, falling
	// back to the unassigned-owner id so a missing owner never blocks a
	// sync.
	UserNameToIDOrDefault(name any) any
	// DefaultOwnerID is the unassigned-owner user id.
	DefaultOwnerID() any
	// UserName returns a Pipedrive user's name by id, nil for the
	// unassigned owner.
	UserName(userID any) any
	// UserEmail returns a Pipedrive user's email by id, nil for the
	// unassigned owner.
	UserEmail(userID any) any
	// StageName returns a Pipedrive stage's name by id.
	StageName(stageID any) any
}

// Registry is the fixed, named set of adapters and transforms the
// mapping tables may reference. Names resolve once, at table
// validation.
type Registry struct {
	adapters   map[string]AdapterFunc
	transforms map[string]TransformFunc
}

func (r *Registry) Adapter(name string) (AdapterFunc, bool) {
	fn, ok := r.adapters[name]
	return fn, ok
}

func (r *Registry) Transform(name string) (TransformFunc, bool) {
	fn, ok := r.transforms[name]
	return fn, ok
}

// NewRegistry builds the adapter registry, binding the related-entity
// adapters to the given resolver.
func NewRegistry(resolver Resolver) *Registry {
	r := &Registry{
		adapters: map[string]AdapterFunc{
			"split_name_first":       splitNameFirst,
			"split_name_last":        splitNameLast,
			"country_iso_to_name":    countryISOToName,
			"country_name_to_iso":    countryNameToISO,
			"industry_name_to_code":  industryNameToCode,
			"industry_code_to_name":  industryCodeToName,
			"deal_type_code_to_name": dealTypeCodeToName,
			"datetime_to_date":       datetimeToDate,
			"datetime_to_quarter":    datetimeToQuarter,
			"datetime_to_year":       datetimeToYear,
			"number_to_string":       numberToString,
			"number_to_float":        numberToFloat,
			"is_closed":              isClosed,
			"is_won":                 isWon,
			"toggle_boolean":         toggleBoolean,
			"custom_subject":         customSubject,
		},
		transforms: map[string]TransformFunc{
			"call_type":  callType,
			"today_date": todayDate,
		},
	}

	if resolver != nil {
		r.adapters["organization_to_external_id"] = resolver.OrganizationToExternalID
		r.adapters["user_name_to_user_id"] = resolver.UserNameToID
		r.adapters["user_name_to_user_id_or_default"] = resolver.UserNameToIDOrDefault
		r.adapters["stage_to_name"] = resolver.StageName
		r.adapters["user_to_email"] = resolver.UserEmail
		r.adapters["user_to_first_name"] = func(userID any) any {
			name := resolver.UserName(userID)
			if crm.IsEmpty(name) {
				return nil
			}
			return splitNameFirst(name)
		}
		r.adapters["user_to_last_name"] = func(userID any) any {
			name := resolver.UserName(userID)
			if crm.IsEmpty(name) {
				return nil
			}
			return splitNameLast(name)
		}

		r.transforms["company_name_to_org_id"] = resolver.CompanyToOrgID
		r.transforms["default_owner_id"] = func(*crm.Entity) any {
			return resolver.DefaultOwnerID()
		}
	}

	return r
}
