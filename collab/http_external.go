package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/value"
)

// HTTPExternalCaller posts a writeToExternal action's rendered payload to a
// named webhook endpoint as JSON, treating any non-2xx response as a
// delivery failure.
type HTTPExternalCaller struct {
	Client    *http.Client
	Endpoints map[string]string // external name -> destination URL
}

// NewHTTPExternalCaller builds a caller with a 30-second default timeout,
// matching the executor's original default HTTP client.
func NewHTTPExternalCaller(endpoints map[string]string) *HTTPExternalCaller {
	return &HTTPExternalCaller{
		Client:    &http.Client{Timeout: 30 * time.Second},
		Endpoints: endpoints,
	}
}

func (c *HTTPExternalCaller) Call(ctx context.Context, name string, payload value.Value) error {
	url, ok := c.Endpoints[name]
	if !ok {
		return pipeflowerr.Newf(pipeflowerr.CodeExternalNotFound, "no endpoint registered for external %q", name)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return pipeflowerr.Newf(pipeflowerr.CodeExternalCallFailed, "external %q request failed: %v", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return pipeflowerr.Newf(pipeflowerr.CodeExternalCallFailed,
			"external %q responded with status %d: %s", name, resp.StatusCode, string(respBody))
	}
	return nil
}

var _ ExternalCaller = (*HTTPExternalCaller)(nil)
