package secops

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aegisops/aegis/tool"
)

// defaultTimeout bounds every outbound request of the built-in tools.
const defaultTimeout = 30 * time.Second

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// drainBody reads at most limit bytes for error reporting and closes the body.
func drainBody(body io.ReadCloser, limit int64) string {
	defer body.Close()
	data, _ := io.ReadAll(io.LimitReader(body, limit))
	return string(data)
}

// statusError converts a non-2xx response into a tool execution error.
func statusError(name string, resp *http.Response) *tool.Error {
	return tool.NewError(name, fmt.Sprintf("unexpected status %d: %s",
		resp.StatusCode, drainBody(resp.Body, 512)), tool.CodeExecution)
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}
