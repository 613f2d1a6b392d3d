package briefer

import "fmt"

// SystemPrompt sets the model up as a strict extractor.
const SystemPrompt = `You are an information extraction system.

Rules:
- Output ONLY valid JSON
- Do not include markdown
- Do not include commentary
- Do not guess missing values; use null
- Follow the schema exactly
- investment_brief must contain EXACTLY 10 bullet points
- Use concise, factual language

If unsure, use null or empty lists.`

// ExtractionPrompt precedes the deal text in the first request.
const ExtractionPrompt = `Extract a structured deal brief from the following text.

Text:
`

const repairPrompt = `The previous output was invalid.

Validation error:
%s

Fix the output so it strictly matches this JSON schema:
%s

Rules:
- Output ONLY valid JSON
- No markdown
- No explanation`

// BriefSchema is the JSON schema every generated brief must satisfy.
const BriefSchema = `{
  "type": "object",
  "required": ["investment_brief", "entities", "tags"],
  "properties": {
    "investment_brief": {"type": "array", "items": {"type": "string"}, "minItems": 10, "maxItems": 10},
    "entities": {
      "type": "object",
      "required": ["company", "founders", "sector", "geography", "stage", "round_size_usd", "notable_metrics"],
      "properties": {
        "company": {"type": ["string", "null"]},
        "founders": {"type": "array", "items": {"type": "string"}},
        "sector": {"type": ["string", "null"]},
        "geography": {"type": ["string", "null"]},
        "stage": {"enum": ["Seed", "Series A", "Series B", "Unknown"]},
        "round_size_usd": {"type": ["number", "null"]},
        "notable_metrics": {"type": "array", "items": {"type": "string"}}
      }
    },
    "tags": {
      "type": "object",
      "required": ["category", "stage"],
      "properties": {
        "category": {"type": "array", "items": {"enum": ["fintech", "deep tech", "climate tech"]}},
        "stage": {"enum": ["Seed", "Series A", "Series B"]}
      }
    }
  }
}`

// SchemaPrompt is appended to the system instruction.
const SchemaPrompt = `You MUST output JSON that matches this schema exactly:

` + BriefSchema + `

Additional constraints:
- investment_brief must contain EXACTLY 10 items
- Arrays must be present even if empty
- Do not add or remove fields`

// RepairPrompt asks the model to fix output that failed validation.
func RepairPrompt(validationErr error) string {
	return fmt.Sprintf(repairPrompt, validationErr, BriefSchema)
}
