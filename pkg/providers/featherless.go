package providers

const featherlessBaseURL = "https://api.featherless.ai/v1"

// featherless is the Featherless descriptor. Featherless loads models on
// demand and answers 400 with a "model is cold" style message until the
// model is resident, so it is cold-start prone with a 400 signal.
type featherless struct {
	creds     CredentialSource
	endpoints EndpointSource
}

func newFeatherless(creds CredentialSource, endpoints EndpointSource) *featherless {
	return &featherless{creds: creds, endpoints: endpoints}
}

func (p *featherless) Name() string { return "featherless" }

func (p *featherless) BaseURL() string {
	return resolveBaseURL(p.Name(), featherlessBaseURL, p.endpoints)
}

func (p *featherless) Headers() map[string]string {
	return bearerHeaders(p.Name(), p.creds)
}

func (p *featherless) Configured() bool { return p.creds(p.Name()) != "" }

func (p *featherless) Capabilities() Capabilities {
	return Capabilities{ColdStartProne: true}
}

func (p *featherless) ColdStartStatus() int { return 400 }

func (p *featherless) RewriteModel(model string) string { return model }

func (p *featherless) VisionModels() []string { return nil }
