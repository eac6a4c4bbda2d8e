package secops

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aegisops/aegis/core"
	"github.com/aegisops/aegis/tool"
)

// defaultNVDBaseURL is the public NVD CVE REST endpoint.
const defaultNVDBaseURL = "https://services.nvd.nist.gov/rest/json/cves/2.0"

// CVEOptions configures the lookup_cve tool.
type CVEOptions struct {
	// HTTPClient used for requests. Defaults to a 30s-timeout client.
	HTTPClient *http.Client

	// BaseURL of the NVD CVE API. Tests point this at a local server.
	BaseURL string

	// APIKey, when set, is sent as the apiKey header NVD uses for higher
	// rate limits.
	APIKey string

	// MaxResults caps returned vulnerabilities per query.
	MaxResults int
}

// CVELookup queries the NVD CVE REST API by keyword.
type CVELookup struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	maxResults int
}

// CVESummary is one matched vulnerability in compact form.
type CVESummary struct {
	ID          string  `json:"id"`
	Description string  `json:"description,omitempty"`
	Severity    string  `json:"severity,omitempty"`
	Score       float64 `json:"score,omitempty"`
	Published   string  `json:"published,omitempty"`
}

// NewCVELookup constructs the lookup_cve tool.
func NewCVELookup(optFns ...func(o *CVEOptions)) *CVELookup {
	opts := CVEOptions{
		HTTPClient: defaultHTTPClient(),
		BaseURL:    defaultNVDBaseURL,
		MaxResults: 20,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &CVELookup{
		client:     opts.HTTPClient,
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		maxResults: opts.MaxResults,
	}
}

// Name implements tool.Tool.
func (t *CVELookup) Name() string { return "lookup_cve" }

// Description implements tool.Tool.
func (t *CVELookup) Description() string {
	return "Search the NVD vulnerability database by keyword (product, vendor or CVE id) and return matching CVEs with severity."
}

// Parameters implements tool.Tool.
func (t *CVELookup) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"keyword": map[string]any{
				"type":        "string",
				"description": "Search keyword, e.g. 'openssl' or 'CVE-2024-3094'",
			},
		},
		"required": []string{"keyword"},
	}
}

// nvdResponse mirrors the slice of the NVD 2.0 schema this tool reads.
type nvdResponse struct {
	Vulnerabilities []struct {
		CVE struct {
			ID           string `json:"id"`
			Published    string `json:"published"`
			Descriptions []struct {
				Lang  string `json:"lang"`
				Value string `json:"value"`
			} `json:"descriptions"`
			Metrics struct {
				CVSSMetricV31 []struct {
					CVSSData struct {
						BaseScore    float64 `json:"baseScore"`
						BaseSeverity string  `json:"baseSeverity"`
					} `json:"cvssData"`
				} `json:"cvssMetricV31"`
			} `json:"metrics"`
		} `json:"cve"`
	} `json:"vulnerabilities"`
}

// Execute implements tool.Tool.
func (t *CVELookup) Execute(ctx context.Context, _ core.ExecContext, args map[string]any) (any, error) {
	keyword := stringArg(args, "keyword")
	if keyword == "" {
		return nil, tool.NewError(t.Name(), "keyword is required", tool.CodeValidation)
	}

	q := url.Values{}
	q.Set("keywordSearch", keyword)
	q.Set("resultsPerPage", strconv.Itoa(t.maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, tool.NewError(t.Name(), err.Error(), tool.CodeExecution)
	}
	if t.apiKey != "" {
		req.Header.Set("apiKey", t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, tool.NewError(t.Name(), fmt.Sprintf("nvd request failed: %v", err), tool.CodeExecution)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(t.Name(), resp)
	}
	defer resp.Body.Close()

	var payload nvdResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, tool.NewError(t.Name(), fmt.Sprintf("decode nvd response: %v", err), tool.CodeExecution)
	}

	out := make([]CVESummary, 0, len(payload.Vulnerabilities))
	for _, v := range payload.Vulnerabilities {
		if len(out) >= t.maxResults {
			break
		}

		s := CVESummary{ID: v.CVE.ID, Published: v.CVE.Published}
		for _, d := range v.CVE.Descriptions {
			if d.Lang == "en" {
				s.Description = d.Value
				break
			}
		}
		if m := v.CVE.Metrics.CVSSMetricV31; len(m) > 0 {
			s.Score = m[0].CVSSData.BaseScore
			s.Severity = m[0].CVSSData.BaseSeverity
		}

		out = append(out, s)
	}

	return out, nil
}
