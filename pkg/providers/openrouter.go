package providers

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// openRouter is the OpenRouter descriptor. OpenRouter fronts many upstream
// models behind one OpenAI-compatible API and accepts "provider" routing
// hints as a request extension. Its SSE streams interleave colon-prefixed
// keep-alive comment lines that the stream normalizer discards.
type openRouter struct {
	creds     CredentialSource
	endpoints EndpointSource
}

func newOpenRouter(creds CredentialSource, endpoints EndpointSource) *openRouter {
	return &openRouter{creds: creds, endpoints: endpoints}
}

func (p *openRouter) Name() string { return "openrouter" }

func (p *openRouter) BaseURL() string {
	return resolveBaseURL(p.Name(), openRouterBaseURL, p.endpoints)
}

func (p *openRouter) Headers() map[string]string {
	headers := bearerHeaders(p.Name(), p.creds)
	// OpenRouter uses these for app attribution and ranking.
	headers["HTTP-Referer"] = "https://github.com/mosaic-hq/conduit"
	headers["X-Title"] = "conduit"
	return headers
}

func (p *openRouter) Configured() bool { return p.creds(p.Name()) != "" }

func (p *openRouter) Capabilities() Capabilities {
	return Capabilities{
		Vision:          true,
		FunctionCalling: true,
		WebSearch:       true,
	}
}

func (p *openRouter) ColdStartStatus() int { return 0 }

func (p *openRouter) RewriteModel(model string) string { return model }

func (p *openRouter) VisionModels() []string {
	return []string{
		"qwen/qwen2.5-vl-72b-instruct",
		"meta-llama/llama-3.2-90b-vision-instruct",
		"google/gemini-2.0-flash-001",
	}
}
