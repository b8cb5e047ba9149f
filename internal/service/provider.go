package service

import "strings"

// IsOpenAIProvider checks if the base URL is official OpenAI API
func IsOpenAIProvider(baseURL string) bool {
	return strings.Contains(baseURL, "api.openai.com")
}

// IsNVIDIAProvider checks if the base URL is NVIDIA API
func IsNVIDIAProvider(baseURL string) bool {
	return strings.TrimSuffix(baseURL, "/") == "https://integrate.api.nvidia.com/v1"
}

// jsonSchemaFormat requests strict structured output, supported by api.openai.com
func jsonSchemaFormat() *ResponseFormat {
	return &ResponseFormat{
		Type: "json_schema",
		JSONSchema: &JSONSchema{
			Name:   extractionSchemaName,
			Schema: extractionSchema(),
			Strict: true,
		},
	}
}

// jsonObjectFormat only asks for valid JSON; the shape is carried by the prompt
func jsonObjectFormat() *ResponseFormat {
	return &ResponseFormat{Type: "json_object"}
}
