// Package llmutils is the llm utility package
package llmutils

import (
	"fmt"

	"github.com/clipperhq/clipper/pkg/llm"
	"github.com/clipperhq/clipper/pkg/llm/ollama"
	"github.com/clipperhq/clipper/pkg/llm/openai"
)

type NewClientOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	APIKey       string
}

func NewClient(o *NewClientOpts) (llm.Client, error) {
	switch o.ProviderType {
	case "ollama", "":
		return ollama.NewClient(ollama.ClientConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	case "openai":
		return openai.NewClient(openai.ClientConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
			APIKey:  o.APIKey,
		})
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", o.ProviderType)
	}
}
