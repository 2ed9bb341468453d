package tools

import (
	"fmt"
	"strings"

	"github.com/carlosmmatos/falcon-mcp-go/internal/falcon"
)

// Falcon API scopes required by the intel tools, quoted back to the
// caller when the API rejects a request for missing permissions.
const (
	ActorsReadScope     = "ACTORS (FALCON INTELLIGENCE) READ"
	IndicatorsReadScope = "INDICATORS (FALCON INTELLIGENCE) READ"
)

// accessDeniedTemplate is the remediation guidance returned when the
// API rejects a call for missing scopes. %[1]s is the scope list,
// %[2]s the upstream error message.
const accessDeniedTemplate = `API Access Denied (403): You don't have the required permissions.

Required scope(s): %[1]s

To resolve this issue:
1. Check that your API client has been granted the %[1]s permission(s)
2. Verify your CrowdStrike subscription includes access to this feature
3. Contact your CrowdStrike administrator for assistance

Original error: %[2]s`

// Outcome is the result of classifying an upstream response: either an
// error string ready to hand to the agent, or the response body
// untouched.
type Outcome struct {
	Body falcon.Dict
	Err  string
}

// OK reports whether the response classified as a success.
func (o Outcome) OK() bool {
	return o.Err == ""
}

// Resources returns body.resources from a success outcome.
func (o Outcome) Resources() []falcon.Dict {
	if o.Body == nil {
		return []falcon.Dict{}
	}
	return o.Body.GetDicts("resources")
}

// Normalize classifies a raw Falcon API response. 403s whose error
// message indicates a permission problem produce scope guidance naming
// requiredScopes; every other non-2xx status produces a generic API
// error string. 200 and 201 pass the body through untouched.
func Normalize(resp *falcon.Response, requiredScopes string) Outcome {
	if resp.StatusCode == 403 {
		message := firstErrorMessage(resp.Body.GetList("errors"))
		lowered := strings.ToLower(message)
		if strings.Contains(lowered, "access denied") || strings.Contains(lowered, "authorization failed") {
			scopes := requiredScopes
			if scopes == "" {
				scopes = "appropriate API scopes"
			}
			return Outcome{Err: fmt.Sprintf(accessDeniedTemplate, scopes, message)}
		}
		// 403 for some other reason, fall through to the generic form
	}

	if resp.StatusCode != 200 && resp.StatusCode != 201 {
		// Render the error list as-is; "Unknown error" only stands in
		// when the API sent no list at all
		errList, ok := resp.Body["errors"].([]interface{})
		if !ok {
			errList = []interface{}{"Unknown error"}
		}
		return Outcome{Err: fmt.Sprintf("API Error: %d - %v", resp.StatusCode, errList)}
	}

	body := resp.Body
	if body == nil {
		body = falcon.Dict{}
	}
	return Outcome{Body: body}
}

// firstErrorMessage extracts the message of the first error in an API
// error list, defaulting to "Unknown error" when the list is empty.
func firstErrorMessage(errs []interface{}) string {
	if len(errs) == 0 {
		return "Unknown error"
	}
	switch e := errs[0].(type) {
	case map[string]interface{}:
		if message, ok := e["message"].(string); ok {
			return message
		}
		return ""
	case string:
		return e
	default:
		return ""
	}
}
