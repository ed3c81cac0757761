package llm

// Prompts for the lead workflow steps. Classification and extraction run in
// JSON mode and are decoded against the schemas in entity.
const (
	intentPrompt = `You are a deterministic lead routing agent.
Classify the lead into exactly one: sales, support, partnership, unknown.
Return ONLY JSON with intent and confidence (0.0-1.0).`

	extractionPrompt = `Extract fields from the lead message. Never invent values.
Missing fields = null. Return ONLY valid JSON matching the schema:
{"name": string|null, "email": string|null, "company": string|null, "phone": string|null, "budget": number|null, "message_summary": string|null}`

	replyPrompt = `You are a professional sales assistant.
Use ONLY the extracted fields and intent. Write a natural, helpful reply (max 3 sentences).`
)
