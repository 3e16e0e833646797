// Package llm provides the chat client used to write reel scripts.
//
// The client speaks the OpenAI chat completion protocol through openai-go,
// so any compatible endpoint works; the default configuration targets
// Gemini's OpenAI-compatible API.
//
// # Structured Output
//
// WithResponseSchema attaches a strict JSON schema (built with
// GenerateSchema) to every request. Responses are still passed through
// SanitizeJSONPayload because some providers wrap JSON in code fences even
// when a schema is supplied.
//
// # Errors
//
// Authentication and malformed-request failures are tagged
// services.ErrConfiguration; timeouts services.ErrTimeout; everything else
// services.ErrTransient. Retries on 408/429/5xx are handled by the SDK.
package llm
