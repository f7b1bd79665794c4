package providers

import "strings"

const (
	huggingFaceBaseURL = "https://router.huggingface.co/v1"

	// featherlessRouteSuffix directs the HuggingFace router to serve the
	// model from the Featherless backend.
	featherlessRouteSuffix = ":featherless-ai"
)

// huggingFace is the HuggingFace inference router descriptor. The router
// proxies to partner backends; models routed to Featherless need the
// ":featherless-ai" suffix on the model identifier. The router answers 502
// while an upstream model is still loading.
type huggingFace struct {
	creds     CredentialSource
	endpoints EndpointSource
}

func newHuggingFace(creds CredentialSource, endpoints EndpointSource) *huggingFace {
	return &huggingFace{creds: creds, endpoints: endpoints}
}

func (p *huggingFace) Name() string { return "huggingface" }

func (p *huggingFace) BaseURL() string {
	return resolveBaseURL(p.Name(), huggingFaceBaseURL, p.endpoints)
}

func (p *huggingFace) Headers() map[string]string {
	return bearerHeaders(p.Name(), p.creds)
}

func (p *huggingFace) Configured() bool { return p.creds(p.Name()) != "" }

func (p *huggingFace) Capabilities() Capabilities {
	return Capabilities{
		FunctionCalling: true,
		ColdStartProne:  true,
	}
}

func (p *huggingFace) ColdStartStatus() int { return 502 }

// RewriteModel appends the Featherless routing suffix exactly once.
func (p *huggingFace) RewriteModel(model string) string {
	if strings.HasSuffix(model, featherlessRouteSuffix) {
		return model
	}
	return model + featherlessRouteSuffix
}

func (p *huggingFace) VisionModels() []string { return nil }
