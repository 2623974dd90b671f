package mapping

import (
	"fmt"
	"strings"
	"time"

	"github.com/nuxeo/mkto-pd-sync-app/internal/crm"
	"github.com/nuxeo/mkto-pd-sync-app/internal/pipedrive"
)

// Pure value adapters. Every adapter is responsible for degrading to a
// safe empty value on falsy or unparsable input instead of failing; the
// resolution engine never guards for it.

// splitNameFirst returns everything but the last whitespace token, or
// "" for a single-token name.
func splitNameFirst(v any) any {
	tokens := strings.Fields(crm.String(v))
	if len(tokens) <= 1 {
		return ""
	}
	return strings.Join(tokens[:len(tokens)-1], " ")
}

// splitNameLast returns the last whitespace token, or "" for a blank
// name.
func splitNameLast(v any) any {
	tokens := strings.Fields(crm.String(v))
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}

// countryISOToName translates an ISO-3166 alpha-2 code to the English
// country name. Values already holding a known name, and unknown
// values, pass through unchanged.
func countryISOToName(v any) any {
	s := strings.TrimSpace(crm.String(v))
	if s == "" {
		return v
	}
	if name, ok := countryNameByCode[strings.ToUpper(s)]; ok {
		return name
	}
	if _, ok := countryCodeByName[s]; ok {
		return s
	}
	return v
}

// countryNameToISO is the reverse lookup, with the same pass-through
// behavior on a miss.
func countryNameToISO(v any) any {
	s := strings.TrimSpace(crm.String(v))
	if s == "" {
		return v
	}
	if code, ok := countryCodeByName[s]; ok {
		return code
	}
	if _, ok := countryNameByCode[strings.ToUpper(s)]; ok {
		return strings.ToUpper(s)
	}
	return v
}

// industryNameToCode translates an industry label to the Pipedrive
// option id; unknown labels read as empty.
func industryNameToCode(v any) any {
	label := crm.String(v)
	if label == "" {
		return ""
	}
	for code, name := range pipedrive.IndustryOptions {
		if name == label {
			return code
		}
	}
	return ""
}

// industryCodeToName translates a Pipedrive option id back to its
// label; unknown codes read as empty.
func industryCodeToName(v any) any {
	if crm.IsEmpty(v) {
		return ""
	}
	return pipedrive.IndustryOptions[crm.String(v)]
}

// dealTypeCodeToName translates a deal type code to its label; unknown
// codes read as empty.
func dealTypeCodeToName(v any) any {
	if crm.IsEmpty(v) {
		return ""
	}
	return pipedrive.DealTypeOptions[crm.String(v)]
}

// dateFormats is the fixed fallback chain for datetime reformatting.
var dateFormats = []string{
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(v any) (time.Time, bool) {
	s := strings.TrimSpace(crm.String(v))
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// datetimeToDate reformats a datetime to "YYYY-MM-DD"; values matching
// no known format read as empty.
func datetimeToDate(v any) any {
	t, ok := parseDate(v)
	if !ok {
		return nil
	}
	return t.Format("2006-01-02")
}

// datetimeToQuarter derives the fiscal quarter from a datetime.
func datetimeToQuarter(v any) any {
	t, ok := parseDate(v)
	if !ok {
		return nil
	}
	return (int(t.Month())-1)/3 + 1
}

// datetimeToYear derives the fiscal year from a datetime.
func datetimeToYear(v any) any {
	t, ok := parseDate(v)
	if !ok {
		return nil
	}
	return t.Year()
}

// numberToString renders a number as text; falsy input reads as empty.
func numberToString(v any) any {
	if !crm.IsTruthy(v) {
		return nil
	}
	return crm.String(v)
}

// numberToFloat coerces a value to float64; falsy and unparsable input
// reads as empty.
func numberToFloat(v any) any {
	if !crm.IsTruthy(v) {
		return nil
	}
	if f, ok := crm.Float(v); ok {
		return f
	}
	return nil
}

// isClosed maps a deal status to the closed flag.
func isClosed(v any) any {
	status := crm.String(v)
	return status == "lost" || status == "won"
}

// isWon maps a deal status to the won flag.
func isWon(v any) any {
	return crm.String(v) == "won"
}

func toggleBoolean(v any) any {
	b, _ := v.(bool)
	return !b
}

// customSubject builds the follow-up activity subject from a name.
func customSubject(v any) any {
	return fmt.Sprintf("Follow up with %s", crm.String(v))
}

// callType is the fixed activity type for owner follow-ups.
func callType(*crm.Entity) any {
	return "call"
}

// todayDate stamps the current date.
func todayDate(*crm.Entity) any {
	return time.Now().Format("2006-01-02")
}
