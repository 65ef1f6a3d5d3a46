package gifts

import "strings"

// ModelPricing is USD per one million tokens
type ModelPricing struct {
	PromptPerMillion     float64
	CompletionPerMillion float64
}

// referencePricing is the gpt-4o-mini list price, also used for unknown models
var referencePricing = ModelPricing{PromptPerMillion: 0.15, CompletionPerMillion: 0.60}

// Pricing maps model name prefixes to prices. Keep in sync with AI_MODEL.
var Pricing = map[string]ModelPricing{
	"gpt-4o-mini":  referencePricing,
	"gpt-4.1-mini": {PromptPerMillion: 0.40, CompletionPerMillion: 1.60},
	"gpt-4.1-nano": {PromptPerMillion: 0.10, CompletionPerMillion: 0.40},
}

// PricingFor returns the price entry for model. Dated snapshots such as
// "gpt-4o-mini-2024-07-18" match their base name.
func PricingFor(model string) ModelPricing {
	if p, ok := Pricing[model]; ok {
		return p
	}
	best := ""
	for name := range Pricing {
		if strings.HasPrefix(model, name+"-") && len(name) > len(best) {
			best = name
		}
	}
	if best != "" {
		return Pricing[best]
	}
	return referencePricing
}

// EstimateCost returns the USD cost of one completion
func EstimateCost(model string, promptTokens, completionTokens int64) float64 {
	p := PricingFor(model)
	return float64(promptTokens)*p.PromptPerMillion/1e6 + float64(completionTokens)*p.CompletionPerMillion/1e6
}
