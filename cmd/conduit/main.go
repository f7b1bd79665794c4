// Conduit is a resilient request relay for hosted model providers.
//
// It normalizes chat-completion calls across OpenRouter, HuggingFace,
// Featherless, Venice, and Together, providing:
//   - Cold-start and transient retry with provider-aware backoff
//   - Stream normalization across provider SSE dialects
//   - Failover chains keyed by abstract model-class labels
//   - Advisory rate-limit tracking from response headers
//
// Usage:
//
//	# Send a chat request to one provider
//	conduit chat --provider openrouter --model meta-llama/llama-3.1-8b-instruct "hello"
//
//	# Send through a failover chain
//	conduit chat --class fast "hello"
//
//	# Stream the completion
//	conduit chat --provider venice --model llama-3.3-70b --stream "tell me a story"
//
//	# List a provider's models
//	conduit models --provider together
//
//	# Validate the configuration
//	conduit validate --config conduit.yaml
//
//	# Run the relay daemon (metrics endpoint, config hot-reload, catalog refresh)
//	conduit run --config conduit.yaml
package main

func main() {
	Execute()
}
