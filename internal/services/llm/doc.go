// Package llm talks to an OpenAI compatible chat completion API (Cerebras by
// default) to turn script segments into image generation prompts. Responses
// are requested as JSON and decoded tolerantly since models occasionally wrap
// payloads in code fences.
package llm
