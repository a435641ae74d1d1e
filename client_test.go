package probe

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCallSendsJSONRPCEnvelope(t *testing.T) {
	var body []byte
	var contentType, accept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		contentType = r.Header.Get("Content-Type")
		accept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"result":{"isError":false}}`)
	}))
	defer srv.Close()

	resp := NewClient(srv.URL).Call(context.Background(), "lookup_gene", map[string]any{"symbol": "TP53"})
	if resp.Fault != nil {
		t.Fatalf("unexpected fault: %+v", resp.Fault)
	}

	if contentType != "application/json" {
		t.Fatalf("Content-Type = %q", contentType)
	}
	if accept != "application/json, text/event-stream" {
		t.Fatalf("Accept = %q", accept)
	}

	var req struct {
		JSONRPC string `json:"jsonrpc"`
		ID      string `json:"id"`
		Method  string `json:"method"`
		Params  struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		} `json:"params"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if req.JSONRPC != "2.0" || req.ID != "1" || req.Method != "tools/call" {
		t.Fatalf("unexpected envelope: %+v", req)
	}
	if req.Params.Name != "lookup_gene" || req.Params.Arguments["symbol"] != "TP53" {
		t.Fatalf("unexpected params: %+v", req.Params)
	}
}

func TestCallDecodesPlainJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"result":{"isError":false,"content":[{"type":"text","text":"ok"}]}}`)
	}))
	defer srv.Close()

	resp := NewClient(srv.URL).Call(context.Background(), "t", nil)
	if resp.Fault != nil {
		t.Fatalf("unexpected fault: %+v", resp.Fault)
	}
	envelope, ok := resp.Value.(map[string]any)
	if !ok {
		t.Fatalf("value is %T, want map", resp.Value)
	}
	result := envelope["result"].(map[string]any)
	if result["isError"] != false {
		t.Fatalf("isError = %v", result["isError"])
	}
}

func TestCallConcatenatesEventStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "event: message\n")
		io.WriteString(w, "data: {\"result\":\n")
		io.WriteString(w, ": keep-alive\n")
		io.WriteString(w, "\n")
		io.WriteString(w, "data: {\"isError\":false}}\n")
	}))
	defer srv.Close()

	resp := NewClient(srv.URL).Call(context.Background(), "t", nil)
	if resp.Fault != nil {
		t.Fatalf("unexpected fault: %+v", resp.Fault)
	}
	envelope := resp.Value.(map[string]any)
	result, ok := envelope["result"].(map[string]any)
	if !ok || result["isError"] != false {
		t.Fatalf("decoded stream mismatch: %#v", resp.Value)
	}
}

func TestCallEventStreamParseFaultKeepsRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: not\n")
		io.WriteString(w, "data: json\n")
	}))
	defer srv.Close()

	resp := NewClient(srv.URL).Call(context.Background(), "t", nil)
	if resp.Fault == nil {
		t.Fatal("expected a transport fault")
	}
	if resp.Fault.Raw != "notjson" {
		t.Fatalf("Raw = %q, want concatenated text", resp.Fault.Raw)
	}
	if !strings.Contains(resp.Fault.Message, "parse streamed JSON") {
		t.Fatalf("Message = %q", resp.Fault.Message)
	}
}

func TestCallEmptyEventStreamIsFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, ": nothing but keep-alives\n")
	}))
	defer srv.Close()

	resp := NewClient(srv.URL).Call(context.Background(), "t", nil)
	if resp.Fault == nil {
		t.Fatal("expected a transport fault for an empty stream")
	}
	if resp.Fault.Raw != "" {
		t.Fatalf("Raw = %q, want empty", resp.Fault.Raw)
	}
}

func TestCallMalformedJSONBodyKeepsRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, "oops, not json")
	}))
	defer srv.Close()

	resp := NewClient(srv.URL).Call(context.Background(), "t", nil)
	if resp.Fault == nil {
		t.Fatal("expected a transport fault")
	}
	if resp.Fault.Raw != "oops, not json" {
		t.Fatalf("Raw = %q", resp.Fault.Raw)
	}
}

func TestCallTransportErrorBecomesFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	resp := NewClient(srv.URL).Call(context.Background(), "t", nil)
	if resp.Fault == nil {
		t.Fatal("expected a transport fault")
	}
	if resp.Fault.Message == "" {
		t.Fatal("fault message is empty")
	}
}

func TestCallTimeoutBecomesFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := &Client{Endpoint: srv.URL, Timeout: 50 * time.Millisecond}
	start := time.Now()
	resp := client.Call(context.Background(), "t", nil)
	if resp.Fault == nil {
		t.Fatal("expected a transport fault on timeout")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("call did not respect the timeout, took %v", elapsed)
	}
}

func TestResponseMarshalJSON(t *testing.T) {
	decoded := Response{Value: map[string]any{"result": map[string]any{"isError": false}}}
	data, err := json.Marshal(decoded)
	if err != nil {
		t.Fatalf("marshal decoded: %v", err)
	}
	if string(data) != `{"result":{"isError":false}}` {
		t.Fatalf("decoded JSON = %s", data)
	}

	fault := Response{Fault: &TransportFault{Message: "boom", Raw: "text"}}
	data, err = json.Marshal(fault)
	if err != nil {
		t.Fatalf("marshal fault: %v", err)
	}
	if string(data) != `{"error":"boom","raw":"text"}` {
		t.Fatalf("fault JSON = %s", data)
	}
}
