package probe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds one full request/response cycle, stream drain included.
const DefaultTimeout = 30 * time.Second

// rpcRequest is the outgoing JSON-RPC 2.0 envelope for a tool call.
type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      string    `json:"id"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
}

type rpcParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// TransportFault records an exchange that produced no decodable envelope.
// Raw carries the undecodable body text when one was read.
type TransportFault struct {
	Message string `json:"error"`
	Raw     string `json:"raw,omitempty"`
}

// Response is the decoded outcome of one invocation: either a JSON value or a
// transport fault, never both. Downstream code branches on Fault and stays
// agnostic to whether the server answered with plain JSON or an event stream.
type Response struct {
	Value any
	Fault *TransportFault
}

// MarshalJSON renders a fault as {"error": ..., "raw": ...} and a decoded
// response as the value itself, matching the shape consumers persist and print.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Fault != nil {
		return json.Marshal(r.Fault)
	}
	return json.Marshal(r.Value)
}

// Client invokes tools through a JSON-RPC 2.0 endpoint, accepting either a
// plain JSON reply or a server-sent-event stream on the same code path.
type Client struct {
	Endpoint   string
	Timeout    time.Duration // per-call budget; DefaultTimeout when zero
	HTTPClient *http.Client
}

// NewClient returns a client for the given endpoint with the default timeout.
func NewClient(endpoint string) *Client {
	return &Client{Endpoint: endpoint, Timeout: DefaultTimeout}
}

// Call invokes one tool and decodes whatever comes back. It never returns an
// error: transport faults, timeouts and malformed bodies are all folded into
// the Response so a single bad tool cannot abort a run.
func (c *Client) Call(ctx context.Context, name string, arguments map[string]any) Response {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      "1", // calls are sequential, the id is never used for correlation
		Method:  "tools/call",
		Params:  rpcParams{Name: name, Arguments: arguments},
	})
	if err != nil {
		return faultResponse(err.Error(), "")
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return faultResponse(err.Error(), "")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return faultResponse(err.Error(), "")
	}
	defer resp.Body.Close()

	if strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream") {
		return decodeEventStream(resp.Body)
	}
	return decodeJSONBody(resp.Body)
}

// decodeEventStream strips the data: prefix from every matching line,
// concatenates the payloads verbatim and parses the result as one JSON
// document. Non-data lines (comments, event fields, keep-alives) are skipped.
func decodeEventStream(body io.Reader) Response {
	var data strings.Builder
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
	}
	if err := scanner.Err(); err != nil {
		return faultResponse(err.Error(), "")
	}

	raw := data.String()
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return faultResponse("failed to parse streamed JSON: "+err.Error(), raw)
	}
	return Response{Value: value}
}

func decodeJSONBody(body io.Reader) Response {
	raw, err := io.ReadAll(body)
	if err != nil {
		return faultResponse(err.Error(), "")
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return faultResponse("failed to parse JSON: "+err.Error(), string(raw))
	}
	return Response{Value: value}
}

func faultResponse(message, raw string) Response {
	return Response{Fault: &TransportFault{Message: message, Raw: raw}}
}
