package extract

import "fmt"

// promptTemplate is the fixed-shot extraction instruction. The enumerated
// vocabularies, fuzzy-synonym hints, and the two worked examples are
// load-bearing for extraction accuracy; change them only together with
// the vocabulary tables in the query package.
const promptTemplate = `You are an intelligent assistant for a perfume recommendation system.
Your task is to extract structured JSON data from the user's natural language query.

You must identify and return the following fields:
- "category": set as "perfume"
- "gender": one of ["male", "female", "unisex"], based on user preference
- "longevity": one of ["moderate", "long lasting", "eternal", "weak", "very weak"]
- "sillage": one of ["intimate", "moderate", "strong", "very strong", "enormous"]
- "suitable_season": list of up to 2 values from ["spring", "summer", "autumn", "winter"]
- "suitable_time": list containing "day", "night", or both
- "main_accords": list of scent accord keywords mentioned by the user (e.g. "floral", "woody", "citrus", "musk")

Instructions:
- Use fuzzy matching to recognize synonyms (e.g., "last all day" -> "long lasting", "powerful scent trail" -> "strong" sillage).
- "last long", "lasts long", "stays long", "lasts all day" -> "long lasting"
- "not very long", "soft" -> "weak", "lightly lasts" -> "very weak"
- For season and time, identify implicit expressions like "sunny" -> "summer", "evening" -> "night".
- Only return values when confident. Omit uncertain fields.
- Output JSON only, no extra commentary.

Examples:

User input: "Looking for a long-lasting floral perfume with strong projection, best for winter nights"
Response:
{
  "category": "perfume",
  "longevity": "long lasting",
  "sillage": "strong",
  "suitable_season": ["winter"],
  "suitable_time": ["night"],
  "main_accords": ["floral"]
}

User input: "A soft and fresh scent for spring and summer days, preferably for women"
Response:
{
  "category": "perfume",
  "gender": "female",
  "longevity": "moderate",
  "suitable_season": ["spring", "summer"],
  "suitable_time": ["day"],
  "main_accords": ["fresh"]
}

Now, the user's input is:
%q

Please return only the JSON format, without any additional text:
`

// buildPrompt embeds a normalized query into the extraction instruction.
func buildPrompt(normalizedQuery string) string {
	return fmt.Sprintf(promptTemplate, normalizedQuery)
}
