package jargon

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/maastricht-university/meeting-clarity/clarity"
	"github.com/maastricht-university/meeting-clarity/vocab"
)

// ReportSchema is the JSON schema of clarity.Report, strict enough for
// structured-output backends.
func ReportSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return r.Reflect(clarity.Report{})
}

// SystemPrompt builds the consultant instructions for v.
func SystemPrompt(v *vocab.Vocabulary) string {
	var b strings.Builder
	b.WriteString("You are a Senior Communication Clarity Consultant.\n\n")
	b.WriteString("MASTER JARGON LIST (only these terms should be identified):\n")
	for _, t := range v.Terms() {
		if t.Meaning == "" {
			fmt.Fprintf(&b, "- %s\n", t.Term)
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", t.Term, t.Meaning)
	}

	schema, _ := json.MarshalIndent(ReportSchema(), "", "  ")
	fmt.Fprintf(&b, `
CRITICAL INSTRUCTIONS:
1. Search the transcript for EVERY term in the list above.
2. Count how many times EACH speaker uses each term (case-insensitive).
3. For each term a speaker used, provide:
   - term (exact spelling from the list)
   - speaker (the speaker label)
   - frequency (integer count)
   - clarity_critique (a clearer way to say it)
   - penalty_weight (1.0 for buzzwords, 0.5 for technical terms, 0.2 for necessary terms)
4. Set total_jargon_count and an overall_clarity_summary of at most 50 words.
5. Do NOT identify any term that is not in the list above.
6. If a term appears 0 times, do NOT include it.
7. Check all %d terms in the list.

Return one JSON object matching this schema exactly:

%s

Do NOT wrap the result in extra keys. Respond with JSON only, no explanation.
`, v.Len(), schema)
	return b.String()
}

// stripFence removes a surrounding markdown code fence, if any.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
