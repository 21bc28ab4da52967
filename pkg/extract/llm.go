package extract

import (
	"context"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// KitCompleter adapts the go-kit chat client to the Completer interface.
type KitCompleter struct {
	client *llm.Client
}

// NewKitCompleter creates a completion client for an OpenAI-compatible
// endpoint. Temperature 0 keeps the positional output format stable.
func NewKitCompleter(apiBase, apiKey, model string) *KitCompleter {
	return &KitCompleter{
		client: llm.NewClient(apiBase, apiKey, model,
			llm.WithTemperature(0),
			llm.WithMaxTokens(1024),
			llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
		),
	}
}

// Complete sends one system+user exchange and returns the generated text.
func (k *KitCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	return k.client.Complete(ctx, system, user)
}
