package secops

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"

	"github.com/aegisops/aegis/core"
	"github.com/aegisops/aegis/tool"
)

// IPOptions configures the lookup_ip tool.
type IPOptions struct {
	// HTTPClient used for requests. Defaults to a 30s-timeout client.
	HTTPClient *http.Client

	// APIKey, when set, is sent as a bearer token.
	APIKey string
}

// IPLookup queries a reputation service for a single IP address. The service
// is expected to answer GET <base>/<ip> with a JSON object; the body is
// passed through to the model unchanged.
type IPLookup struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewIPLookup constructs the lookup_ip tool against the given reputation
// endpoint.
func NewIPLookup(baseURL string, optFns ...func(o *IPOptions)) *IPLookup {
	opts := IPOptions{
		HTTPClient: defaultHTTPClient(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &IPLookup{
		client:  opts.HTTPClient,
		baseURL: baseURL,
		apiKey:  opts.APIKey,
	}
}

// Name implements tool.Tool.
func (t *IPLookup) Name() string { return "lookup_ip" }

// Description implements tool.Tool.
func (t *IPLookup) Description() string {
	return "Look up the reputation of an IPv4 or IPv6 address: known malicious activity, categories and last-seen data."
}

// Parameters implements tool.Tool.
func (t *IPLookup) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ip": map[string]any{
				"type":        "string",
				"description": "The IP address to look up",
			},
		},
		"required": []string{"ip"},
	}
}

// Execute implements tool.Tool.
func (t *IPLookup) Execute(ctx context.Context, _ core.ExecContext, args map[string]any) (any, error) {
	raw := stringArg(args, "ip")
	if raw == "" {
		return nil, tool.NewError(t.Name(), "ip is required", tool.CodeValidation)
	}

	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return nil, tool.NewError(t.Name(), fmt.Sprintf("invalid ip address %q", raw), tool.CodeValidation)
	}

	endpoint := t.baseURL + "/" + url.PathEscape(addr.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, tool.NewError(t.Name(), err.Error(), tool.CodeExecution)
	}
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, tool.NewError(t.Name(), fmt.Sprintf("reputation request failed: %v", err), tool.CodeExecution)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(t.Name(), resp)
	}
	defer resp.Body.Close()

	var report map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, tool.NewError(t.Name(), fmt.Sprintf("decode reputation response: %v", err), tool.CodeExecution)
	}

	return report, nil
}
