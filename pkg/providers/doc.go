// Package providers defines the provider registry and the wire types shared
// by the dispatch, stream, and failover layers.
//
// The provider set is closed at build time: OpenRouter, HuggingFace,
// Featherless, Venice, and Together. Each provider is a Descriptor — base
// endpoint, call-time header builder, capability flags, and cold-start
// signal — registered in a fixed Registry. Credentials are pulled from the
// injected CredentialSource on every Headers call, never cached, so key
// rotation takes effect immediately.
//
// Wire types follow the OpenAI chat-completion schema. ChatRequest carries
// an Extensions map whose entries are merged verbatim into the serialized
// body, which is how provider-specific fields (OpenRouter "provider" routing
// hints, "venice_parameters", web-search toggles) pass through untouched.
package providers
