package providers

const togetherBaseURL = "https://api.together.xyz/v1"

// together is the Together descriptor: OpenAI-compatible chat plus image
// generation and function calling.
type together struct {
	creds     CredentialSource
	endpoints EndpointSource
}

func newTogether(creds CredentialSource, endpoints EndpointSource) *together {
	return &together{creds: creds, endpoints: endpoints}
}

func (p *together) Name() string { return "together" }

func (p *together) BaseURL() string {
	return resolveBaseURL(p.Name(), togetherBaseURL, p.endpoints)
}

func (p *together) Headers() map[string]string {
	return bearerHeaders(p.Name(), p.creds)
}

func (p *together) Configured() bool { return p.creds(p.Name()) != "" }

func (p *together) Capabilities() Capabilities {
	return Capabilities{
		Vision:          true,
		ImageGen:        true,
		FunctionCalling: true,
	}
}

func (p *together) ColdStartStatus() int { return 0 }

func (p *together) RewriteModel(model string) string { return model }

func (p *together) VisionModels() []string {
	return []string{
		"Qwen/Qwen2.5-VL-72B-Instruct",
		"meta-llama/Llama-3.2-90B-Vision-Instruct-Turbo",
	}
}
