package algorithms

import (
	"context"
	"fmt"

	"github.com/worldline-go/klient"

	"github.com/rakunlabs/algofab/pkg/algorithm"
)

func init() {
	algorithm.RegisterType("remote", buildRemoteHandler)
}

// buildRemoteHandler implements the "remote" descriptor type: the
// algorithm is proxied to another HTTP service via klient, letting a
// fleet of specialized algorithm workers sit behind one algofab front
// door the same way the queue already fronts in-process entries.
//
// Config must carry a "url" that receives a POST with the JSON body
// {"input": <task inputs>, "resources": <granted resources>}; the
// response body is decoded as the output map directly.
func buildRemoteHandler(d algorithm.Descriptor) (algorithm.HandlerFunc, error) {
	url, _ := d.Config["url"].(string)
	if url == "" {
		return nil, fmt.Errorf("remote descriptor %q: config.url is required", d.ID)
	}

	client, err := klient.New(klient.WithDisableBaseURLCheck(true))
	if err != nil {
		return nil, fmt.Errorf("remote descriptor %q: build http client: %w", d.ID, err)
	}

	return func(ctx context.Context, inputs map[string]any, resources map[string]float64) (map[string]any, error) {
		payload := map[string]any{"input": inputs, "resources": resources}

		var out map[string]any
		if err := client.Do(ctx, klient.Request{
			Method: "POST",
			URL:    url,
			Body:   payload,
		}, &out); err != nil {
			return nil, fmt.Errorf("remote algorithm %q: %w", d.ID, err)
		}
		return out, nil
	}, nil
}
