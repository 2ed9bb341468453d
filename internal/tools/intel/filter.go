package intel

import "strings"

// indicatorFilters holds the optional search criteria accepted by the
// indicator tools. Zero-valued fields contribute no clause.
type indicatorFilters struct {
	indicatorValue      string
	indicatorType       string
	malwareFamily       string
	threatType          string
	maliciousConfidence string
	publishedAfter      string // YYYY-MM-DD
	mitreTechnique      string
}

// build renders the populated fields as an FQL filter expression, clauses
// joined with "+" in a fixed order so identical inputs always produce the
// same filter. Returns "" when no field is set, which the client treats as
// unfiltered.
func (f indicatorFilters) build() string {
	var clauses []string

	if f.indicatorValue != "" {
		clauses = append(clauses, "indicator:"+quoteFQL(f.indicatorValue))
	}
	if f.indicatorType != "" {
		clauses = append(clauses, "type:"+quoteFQL(f.indicatorType))
	}
	if f.malwareFamily != "" {
		clauses = append(clauses, "malware_families:"+quoteFQL(f.malwareFamily))
	}
	if f.threatType != "" {
		clauses = append(clauses, "threat_types:"+quoteFQL(f.threatType))
	}
	if f.maliciousConfidence != "" {
		clauses = append(clauses, "malicious_confidence:"+quoteFQL(f.maliciousConfidence))
	}
	if f.publishedAfter != "" {
		clauses = append(clauses, "published_date:>"+quoteFQL(f.publishedAfter))
	}
	if f.mitreTechnique != "" {
		// Intel labels carry names like "MitreATTCK/T1566.001", so the
		// technique is matched as a wildcard substring rather than exactly.
		clauses = append(clauses, "labels.name:*'MitreATTCK/*"+f.mitreTechnique+"*'")
	}

	return strings.Join(clauses, "+")
}

// quoteFQL wraps a value in the single quotes FQL expects. Values are
// interpolated literally.
// TODO: escape embedded quotes once the Intel API's FQL quoting rules for
// them are confirmed.
func quoteFQL(value string) string {
	return "'" + value + "'"
}
