package falcon

// Dict is a loosely typed JSON object as returned by the Falcon API.
// Intel records carry no fixed schema on the wire, so bodies are kept
// as decoded and read through the getters below, which never panic on
// absent or mistyped fields.
type Dict map[string]interface{}

// GetString returns the string at key, or "" when the field is absent
// or not a string.
func (d Dict) GetString(key string) string {
	if v, ok := d[key].(string); ok {
		return v
	}
	return ""
}

// GetList returns the list at key. Absent or mistyped fields yield an
// empty list, never nil, so the value always marshals as a JSON array.
func (d Dict) GetList(key string) []interface{} {
	if v, ok := d[key].([]interface{}); ok && v != nil {
		return v
	}
	return []interface{}{}
}

// GetDicts returns the list at key filtered down to its object
// elements.
func (d Dict) GetDicts(key string) []Dict {
	items := d.GetList(key)
	out := make([]Dict, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, Dict(m))
		}
	}
	return out
}

// Response is a raw Falcon API response. Non-2xx statuses are carried
// here rather than surfaced as Go errors; classifying them is the
// caller's job.
type Response struct {
	StatusCode int
	Body       Dict
}

// QueryOptions are the supported query string parameters for combined
// intel queries. Zero values are omitted from the request, so an empty
// Filter means "unfiltered" rather than an empty filter expression.
// Negative Limit and Offset values are sent as-is and rejected
// upstream.
type QueryOptions struct {
	Filter string
	Sort   string
	Q      string
	Limit  int
	Offset int
}
