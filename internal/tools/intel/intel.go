// Package intel provides MCP tools for querying CrowdStrike Falcon threat
// intelligence: tracked threat actors and indicators of compromise.
package intel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/carlosmmatos/falcon-mcp-go/internal/falcon"
	"github.com/carlosmmatos/falcon-mcp-go/internal/tools"
)

func init() {
	// Register threat intelligence tools
	RegisterListThreatActors()
	RegisterGetActorDetails()
	RegisterSearchIOCs()
	RegisterGetIOCDetails()
	RegisterGetActorIOCs()
	RegisterGetRecentIOCs()
}

// RegisterListThreatActors registers the list_threat_actors tool
func RegisterListThreatActors() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:           "list_threat_actors",
		Description:    "List threat actors tracked by CrowdStrike",
		Profile:        "intel",
		RequiredScopes: tools.ActorsReadScope,
		Schema: mcp.NewTool("list_threat_actors",
			mcp.WithDescription("List threat actors tracked by CrowdStrike Falcon threat intelligence"),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of actors to return (default: 10)")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			limit := 10
			if limitFloat, ok := args["limit"].(float64); ok {
				limit = int(limitFloat)
			}

			client, err := tools.GetIntelClient(ctx)
			if err != nil {
				return tools.ErrorResultf("Error: %v", err), nil
			}

			resp, err := client.QueryActorEntities(ctx, falcon.QueryOptions{Limit: limit})
			if err != nil {
				tools.GetLogger(ctx).Error("Failed to query threat actors", "error", err)
				return tools.ErrorResultf("Error: %v", err), nil
			}

			outcome := tools.Normalize(resp, tools.ActorsReadScope)
			if !outcome.OK() {
				return tools.ErrorResult(outcome.Err), nil
			}

			actors := outcome.Body.GetList("resources")
			if len(actors) == 0 {
				return tools.TextResult("No threat actors found"), nil
			}

			return tools.SuccessResult(map[string]interface{}{"actors": actors}), nil
		},
	})
}

// RegisterGetActorDetails registers the get_actor_details tool
func RegisterGetActorDetails() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:           "get_actor_details",
		Description:    "Get detailed information about a specific threat actor",
		Profile:        "intel",
		RequiredScopes: tools.ActorsReadScope,
		Schema: mcp.NewTool("get_actor_details",
			mcp.WithDescription("Get detailed information about a specific threat actor tracked by CrowdStrike"),
			mcp.WithString("actor_name",
				mcp.Required(),
				mcp.Description("Name of the threat actor to analyze")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			actorName, ok := args["actor_name"].(string)
			if !ok || actorName == "" {
				return tools.ErrorResult("actor_name parameter is required"), nil
			}

			client, err := tools.GetIntelClient(ctx)
			if err != nil {
				return tools.ErrorResultf("Error: %v", err), nil
			}

			resp, err := client.QueryActorEntities(ctx, falcon.QueryOptions{
				Filter: "name:" + quoteFQL(actorName),
			})
			if err != nil {
				tools.GetLogger(ctx).Error("Failed to query actor details", "actor_name", actorName, "error", err)
				return tools.ErrorResultf("Error: %v", err), nil
			}

			outcome := tools.Normalize(resp, tools.ActorsReadScope)
			if !outcome.OK() {
				return tools.ErrorResult(outcome.Err), nil
			}

			actors := outcome.Resources()
			if len(actors) == 0 {
				return tools.TextResult("No actor details found"), nil
			}

			// Take the first match
			return tools.SuccessResult(map[string]interface{}{"actor": actors[0]}), nil
		},
	})
}

// RegisterSearchIOCs registers the search_iocs tool
func RegisterSearchIOCs() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:           "search_iocs",
		Description:    "Search for Indicators of Compromise (IOCs) with various filters",
		Profile:        "intel",
		RequiredScopes: tools.IndicatorsReadScope,
		Schema: mcp.NewTool("search_iocs",
			mcp.WithDescription("Search for Indicators of Compromise (IOCs) with various filters"),
			mcp.WithString("indicator_value",
				mcp.Description("Specific indicator value to search for (hash, IP, domain, etc.)")),
			mcp.WithString("indicator_type",
				mcp.Description("Type of indicator (hash_md5, hash_sha256, ip_address, domain, etc.)")),
			mcp.WithString("malware_family",
				mcp.Description("Filter by malware family name")),
			mcp.WithString("threat_type",
				mcp.Description("Filter by threat type (Banking, Criminal, APT, etc.)")),
			mcp.WithString("malicious_confidence",
				mcp.Description("Filter by confidence level (high, medium, low)")),
			mcp.WithString("published_after",
				mcp.Description("ISO date string to filter IOCs published after this date")),
			mcp.WithString("mitre_technique",
				mcp.Description("Filter by MITRE ATT&CK technique name")),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of IOCs to return (default: 10)")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			var filters indicatorFilters
			filters.indicatorValue, _ = args["indicator_value"].(string)
			filters.indicatorType, _ = args["indicator_type"].(string)
			filters.malwareFamily, _ = args["malware_family"].(string)
			filters.threatType, _ = args["threat_type"].(string)
			filters.maliciousConfidence, _ = args["malicious_confidence"].(string)
			filters.publishedAfter, _ = args["published_after"].(string)
			filters.mitreTechnique, _ = args["mitre_technique"].(string)

			limit := 10
			if limitFloat, ok := args["limit"].(float64); ok {
				limit = int(limitFloat)
			}

			client, err := tools.GetIntelClient(ctx)
			if err != nil {
				return tools.ErrorResultf("Error: %v", err), nil
			}

			resp, err := client.QueryIndicatorEntities(ctx, falcon.QueryOptions{
				Filter: filters.build(),
				Limit:  limit,
			})
			if err != nil {
				tools.GetLogger(ctx).Error("Failed to search IOCs", "error", err)
				return tools.ErrorResultf("Error: %v", err), nil
			}

			outcome := tools.Normalize(resp, tools.IndicatorsReadScope)
			if !outcome.OK() {
				return tools.ErrorResult(outcome.Err), nil
			}

			iocs := outcome.Body.GetList("resources")
			if len(iocs) == 0 {
				return tools.TextResult("No IOCs found matching the criteria"), nil
			}

			return tools.SuccessResult(map[string]interface{}{"iocs": iocs}), nil
		},
	})
}

// RegisterGetIOCDetails registers the get_ioc_details tool
func RegisterGetIOCDetails() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:           "get_ioc_details",
		Description:    "Get detailed information about a specific IOC",
		Profile:        "intel",
		RequiredScopes: tools.IndicatorsReadScope,
		Schema: mcp.NewTool("get_ioc_details",
			mcp.WithDescription("Get detailed information about a specific Indicator of Compromise"),
			mcp.WithString("indicator_value",
				mcp.Required(),
				mcp.Description("The specific indicator value to look up (hash, IP, domain, etc.)")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			indicatorValue, ok := args["indicator_value"].(string)
			if !ok || indicatorValue == "" {
				return tools.ErrorResult("indicator_value parameter is required"), nil
			}

			client, err := tools.GetIntelClient(ctx)
			if err != nil {
				return tools.ErrorResultf("Error: %v", err), nil
			}

			resp, err := client.QueryIndicatorEntities(ctx, falcon.QueryOptions{
				Filter: "indicator:" + quoteFQL(indicatorValue),
			})
			if err != nil {
				tools.GetLogger(ctx).Error("Failed to query IOC details", "indicator_value", indicatorValue, "error", err)
				return tools.ErrorResultf("Error: %v", err), nil
			}

			outcome := tools.Normalize(resp, tools.IndicatorsReadScope)
			if !outcome.OK() {
				return tools.ErrorResult(outcome.Err), nil
			}

			iocs := outcome.Resources()
			if len(iocs) == 0 {
				return tools.TextResultf("No IOC found for indicator: %s", indicatorValue), nil
			}

			// Take the first match. Scalars are copied as-is so absent
			// fields render as null; list fields always render as arrays.
			ioc := iocs[0]
			details := map[string]interface{}{
				"indicator":            ioc["indicator"],
				"type":                 ioc["type"],
				"malicious_confidence": ioc["malicious_confidence"],
				"published_date":       ioc["published_date"],
				"last_updated":         ioc["last_updated"],
				"malware_families":     ioc.GetList("malware_families"),
				"threat_types":         ioc.GetList("threat_types"),
				"actors":               ioc.GetList("actors"),
				"mitre_techniques":     mitreTechniques(ioc),
				"reports":              ioc.GetList("reports"),
				"relations":            ioc.GetList("relations"),
			}

			return tools.SuccessResult(map[string]interface{}{"ioc_details": details}), nil
		},
	})
}

// RegisterGetActorIOCs registers the get_actor_iocs tool
func RegisterGetActorIOCs() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:           "get_actor_iocs",
		Description:    "Get IOCs associated with a specific threat actor",
		Profile:        "intel",
		RequiredScopes: tools.IndicatorsReadScope,
		Schema: mcp.NewTool("get_actor_iocs",
			mcp.WithDescription("Get Indicators of Compromise associated with a specific threat actor"),
			mcp.WithString("actor_name",
				mcp.Required(),
				mcp.Description("Name of the threat actor")),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of IOCs to return (default: 20)")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			actorName, ok := args["actor_name"].(string)
			if !ok || actorName == "" {
				return tools.ErrorResult("actor_name parameter is required"), nil
			}

			limit := 20
			if limitFloat, ok := args["limit"].(float64); ok {
				limit = int(limitFloat)
			}

			client, err := tools.GetIntelClient(ctx)
			if err != nil {
				return tools.ErrorResultf("Error: %v", err), nil
			}

			resp, err := client.QueryIndicatorEntities(ctx, falcon.QueryOptions{
				Filter: "actors:" + quoteFQL(actorName),
				Limit:  limit,
			})
			if err != nil {
				tools.GetLogger(ctx).Error("Failed to query actor IOCs", "actor_name", actorName, "error", err)
				return tools.ErrorResultf("Error: %v", err), nil
			}

			outcome := tools.Normalize(resp, tools.IndicatorsReadScope)
			if !outcome.OK() {
				return tools.ErrorResult(outcome.Err), nil
			}

			iocs := outcome.Resources()
			if len(iocs) == 0 {
				return tools.TextResultf("No IOCs found for threat actor: %s", actorName), nil
			}

			// Summarize the IOCs by type for easier reading
			byType := make(map[string][]map[string]interface{})
			for _, ioc := range iocs {
				iocType := ioc.GetString("type")
				if iocType == "" {
					iocType = "unknown"
				}
				byType[iocType] = append(byType[iocType], map[string]interface{}{
					"indicator":            ioc["indicator"],
					"malicious_confidence": ioc["malicious_confidence"],
					"malware_families":     ioc.GetList("malware_families"),
				})
			}

			return tools.SuccessResult(map[string]interface{}{
				"actor":        actorName,
				"total_iocs":   len(iocs),
				"iocs_by_type": byType,
			}), nil
		},
	})
}

// RegisterGetRecentIOCs registers the get_recent_iocs tool
func RegisterGetRecentIOCs() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:           "get_recent_iocs",
		Description:    "Get recently published IOCs within the specified time period",
		Profile:        "intel",
		RequiredScopes: tools.IndicatorsReadScope,
		Schema: mcp.NewTool("get_recent_iocs",
			mcp.WithDescription("Get Indicators of Compromise published within the last N days"),
			mcp.WithNumber("days",
				mcp.Description("Number of days to look back (default: 7)")),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of IOCs to return (default: 20)")),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			days := 7
			if daysFloat, ok := args["days"].(float64); ok {
				days = int(daysFloat)
			}

			limit := 20
			if limitFloat, ok := args["limit"].(float64); ok {
				limit = int(limitFloat)
			}

			client, err := tools.GetIntelClient(ctx)
			if err != nil {
				return tools.ErrorResultf("Error: %v", err), nil
			}

			dateFilter := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
			resp, err := client.QueryIndicatorEntities(ctx, falcon.QueryOptions{
				Filter: "published_date:>" + quoteFQL(dateFilter),
				Limit:  limit,
				Sort:   "published_date.desc",
			})
			if err != nil {
				tools.GetLogger(ctx).Error("Failed to query recent IOCs", "error", err)
				return tools.ErrorResultf("Error: %v", err), nil
			}

			outcome := tools.Normalize(resp, tools.IndicatorsReadScope)
			if !outcome.OK() {
				return tools.ErrorResult(outcome.Err), nil
			}

			iocs := outcome.Resources()
			if len(iocs) == 0 {
				return tools.TextResultf("No IOCs published in the last %d days", days), nil
			}

			// Trim each record down to the fields worth surfacing
			recent := make([]map[string]interface{}, 0, len(iocs))
			for _, ioc := range iocs {
				recent = append(recent, map[string]interface{}{
					"indicator":            ioc["indicator"],
					"type":                 ioc["type"],
					"published_date":       ioc["published_date"],
					"malicious_confidence": ioc["malicious_confidence"],
					"malware_families":     ioc.GetList("malware_families"),
					"threat_types":         ioc.GetList("threat_types"),
				})
			}

			return tools.SuccessResult(map[string]interface{}{
				"time_period": fmt.Sprintf("Last %d days", days),
				"total_found": len(recent),
				"recent_iocs": recent,
			}), nil
		},
	})
}

// mitreTechniques pulls the MITRE ATT&CK label names off an indicator
// record. The "MitreATTCK/" prefix is kept as the API reports it.
func mitreTechniques(ioc falcon.Dict) []string {
	techniques := []string{}
	for _, label := range ioc.GetDicts("labels") {
		if name := label.GetString("name"); strings.HasPrefix(name, "MitreATTCK/") {
			techniques = append(techniques, name)
		}
	}
	return techniques
}
