package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/doublesearch/core"
)

const translationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "products": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "exists": {"type": "boolean"},
          "min": {"type": "number"},
          "max": {"type": "number"},
          "equals": {"type": "number"}
        },
        "additionalProperties": false
      }
    }
  },
  "required": ["products"],
  "additionalProperties": false
}`

const translationPromptTemplate = `You are a search assistant for a graph database of user profiles ("doubles").
Each double may own products of these types: %s.

Translate the user's query into a JSON filter over those product types.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Keys under "products" must be exactly one of the listed product types. Never invent other types.
- Each product entry is exactly one of: {"exists": true}, {"exists": false}, {"min": N}, {"max": N}, {"min": N, "max": N}, {"equals": N}.
- "worth more than X" / "over X" / "at least X" means {"min": X}. "under X" / "at most X" means {"max": X}.
- Amounts are plain numbers without currency symbols or thousands separators; spell out written numbers ("two hundred thousand" is 200000).
- Ownership phrases without an amount ("has a bank account", "with savings") mean {"exists": true}.
- Mention a product type only when the query constrains it. If the query expresses no product constraint at all, return {"products": {}}.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Find people with savings accounts and property over two hundred thousand"
Output:
{
  "products": {
    "Property": {"min": 200000},
    "BankAccount": {"exists": true}
  }
}

Example:
Input: "doubles with insurance costs between 100 and 500 euros"
Output:
{
  "products": {
    "Insurance": {"min": 100, "max": 500}
  }
}

Example:
Input: "people who do not own their home"
Output:
{
  "products": {
    "Property": {"exists": false}
  }
}

Example (no product constraint):
Input: "people who like sports and travel"
Output:
{
  "products": {}
}`

// strictRetryInstruction is appended to the system prompt for the single
// retry after an unparseable response.
const strictRetryInstruction = `

IMPORTANT: your previous answer was not valid JSON. Respond with NOTHING but a
single JSON object. No markdown fences, no commentary, no trailing text.`

// buildTranslationPrompt creates the system prompt with the product variants embedded.
func buildTranslationPrompt() string {
	names := make([]string, 0)
	for _, t := range core.AllProductTypes() {
		names = append(names, string(t))
	}
	return fmt.Sprintf(translationPromptTemplate,
		strings.Join(names, ", "),
		translationResponseSchema)
}
