// internal/server/schema.go
package server

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// briefSchema is the wire contract for POST /api/v1/forecasts. It rejects
// malformed requests before the engine's own structural checks run, so the
// caller gets field-level messages instead of a single rejection.
const briefSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["industry", "totalBudget", "duration", "funnelStage", "primaryGoal", "platforms"],
  "additionalProperties": false,
  "properties": {
    "industry": { "type": "string", "minLength": 1 },
    "subIndustry": { "type": "string" },
    "totalBudget": { "type": "number", "exclusiveMinimum": 0 },
    "duration": { "type": "string", "enum": ["1_week", "2_weeks", "1_month", "3_months", "6_months", "ongoing"] },
    "funnelStage": { "type": "string", "enum": ["awareness", "consideration", "conversion"] },
    "primaryGoal": { "type": "string", "enum": ["brand_awareness", "traffic", "leads", "conversions", "engagement"] },
    "secondaryGoals": {
      "type": "array",
      "items": { "type": "string", "enum": ["brand_awareness", "traffic", "leads", "conversions", "engagement"] }
    },
    "platforms": {
      "type": "array",
      "minItems": 1,
      "maxItems": 6,
      "items": { "type": "string", "enum": ["meta", "google_ads", "tiktok", "linkedin", "youtube", "x_twitter"] }
    },
    "audience": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "ageRanges": { "type": "array", "items": { "type": "string" } },
        "genders": { "type": "array", "items": { "type": "string" } },
        "locations": { "type": "array", "items": { "type": "string" } },
        "interests": { "type": "array", "items": { "type": "string" } },
        "behaviors": { "type": "array", "items": { "type": "string" } },
        "devices": { "type": "array", "items": { "type": "string" } },
        "lookalikePrecision": { "type": "string", "enum": ["narrow", "balanced", "broad"] }
      }
    },
    "creativeType": { "type": "string", "enum": ["video", "image", "carousel", "ugc", "text"] },
    "competition": { "type": "string", "enum": ["low", "medium", "high"] },
    "seasons": { "type": "array", "items": { "type": "string" } },
    "profitMarginPct": { "type": "number", "minimum": 0, "maximum": 100 },
    "avgOrderValue": { "type": "number", "minimum": 0 }
  }
}`

var briefSchemaLoader = gojsonschema.NewStringLoader(briefSchema)

// validateBriefJSON runs the request body through the schema and returns a
// readable list of violations, empty when the body is valid.
func validateBriefJSON(body []byte) ([]string, error) {
	result, err := gojsonschema.Validate(briefSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, strings.TrimSpace(e.String()))
	}
	return problems, nil
}
