package providers

import "sort"

// CredentialSource returns the bearer token for a provider, or "" when the
// provider has no configured credential. Implementations must read live
// configuration on every call; the registry never caches the result.
type CredentialSource func(provider string) string

// EndpointSource returns a base-URL override for a provider, or "" to use
// the provider's default endpoint.
type EndpointSource func(provider string) string

// Capabilities describes what a provider's API supports.
type Capabilities struct {
	// Vision indicates support for image parts in chat messages.
	Vision bool

	// ImageGen indicates an image-generation endpoint.
	ImageGen bool

	// FunctionCalling indicates tool/function-call support.
	FunctionCalling bool

	// WebSearch indicates a web-search toggle on chat requests.
	WebSearch bool

	// ColdStartProne marks providers whose models may need loading before
	// they can serve; the dispatcher applies the cold-start retry schedule
	// to these providers only.
	ColdStartProne bool
}

// Descriptor is the per-provider adapter interface. One implementation
// exists per provider; all are immutable after construction.
type Descriptor interface {
	// Name returns the provider identifier (e.g. "openrouter").
	Name() string

	// BaseURL returns the API endpoint base, without a trailing slash.
	BaseURL() string

	// Headers builds the request headers for a call. Credentials are read
	// from the credential source at call time. The Authorization header is
	// omitted when no credential is configured.
	Headers() map[string]string

	// Configured reports whether the provider currently has a credential.
	Configured() bool

	// Capabilities returns the provider's capability flags.
	Capabilities() Capabilities

	// ColdStartStatus returns the HTTP status this provider uses to signal
	// that a model is still loading, or 0 for providers that never cold-start.
	ColdStartStatus() int

	// RewriteModel maps a caller-supplied model identifier to the form this
	// provider's API expects. Most providers return the input unchanged.
	RewriteModel(model string) string

	// VisionModels returns the provider's known vision-capable model
	// identifiers, when the provider publishes such a list.
	VisionModels() []string
}

// Registry is the fixed enumeration of provider descriptors. The provider
// set is closed at build time; the registry is safe for concurrent use.
type Registry struct {
	descriptors map[string]Descriptor
}

// NewRegistry constructs the registry for the five built-in providers,
// wiring each descriptor to the given credential and endpoint sources.
// endpoints may be nil when no overrides are needed.
func NewRegistry(creds CredentialSource, endpoints EndpointSource) *Registry {
	if endpoints == nil {
		endpoints = func(string) string { return "" }
	}

	descriptors := map[string]Descriptor{}
	for _, d := range []Descriptor{
		newOpenRouter(creds, endpoints),
		newHuggingFace(creds, endpoints),
		newFeatherless(creds, endpoints),
		newVenice(creds, endpoints),
		newTogether(creds, endpoints),
	} {
		descriptors[d.Name()] = d
	}

	return &Registry{descriptors: descriptors}
}

// Lookup returns the descriptor for a provider identifier, or an
// UnknownProviderError when the identifier is not in the configured set.
func (r *Registry) Lookup(name string) (Descriptor, error) {
	d, ok := r.descriptors[name]
	if !ok {
		return nil, &UnknownProviderError{Provider: name, Known: r.Names()}
	}
	return d, nil
}

// Names returns the sorted provider identifiers in the registry.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// bearerHeaders is the shared header builder: JSON content type plus a
// Bearer token when the credential source has one for this provider.
func bearerHeaders(name string, creds CredentialSource) map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	if key := creds(name); key != "" {
		headers["Authorization"] = "Bearer " + key
	}
	return headers
}

// resolveBaseURL applies the endpoint override when present.
func resolveBaseURL(name, fallback string, endpoints EndpointSource) string {
	if url := endpoints(name); url != "" {
		return url
	}
	return fallback
}
