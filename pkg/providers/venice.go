package providers

const veniceBaseURL = "https://api.venice.ai/api/v1"

// venice is the Venice descriptor. Venice extends the OpenAI schema with a
// "venice_parameters" extension block (web search, system-prompt controls)
// and exposes an image-generation endpoint.
type venice struct {
	creds     CredentialSource
	endpoints EndpointSource
}

func newVenice(creds CredentialSource, endpoints EndpointSource) *venice {
	return &venice{creds: creds, endpoints: endpoints}
}

func (p *venice) Name() string { return "venice" }

func (p *venice) BaseURL() string {
	return resolveBaseURL(p.Name(), veniceBaseURL, p.endpoints)
}

func (p *venice) Headers() map[string]string {
	return bearerHeaders(p.Name(), p.creds)
}

func (p *venice) Configured() bool { return p.creds(p.Name()) != "" }

func (p *venice) Capabilities() Capabilities {
	return Capabilities{
		Vision:    true,
		ImageGen:  true,
		WebSearch: true,
	}
}

func (p *venice) ColdStartStatus() int { return 0 }

func (p *venice) RewriteModel(model string) string { return model }

func (p *venice) VisionModels() []string {
	return []string{"qwen-2.5-vl", "mistral-31-24b"}
}
