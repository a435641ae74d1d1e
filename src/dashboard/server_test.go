package dashboard

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	probe "github.com/Protocol-Lattice/go-probe"
	"github.com/Protocol-Lattice/go-probe/src/catalog"
)

func testServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()

	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"result":{"isError":false}}`)
	}))
	t.Cleanup(endpoint.Close)

	runner := &probe.Runner{
		Tools: []catalog.Tool{
			{Name: "gene_lookup", ToolType: "api", Properties: map[string]any{}, Example: map[string]any{"symbol": "TP53"}},
			{Name: "broken", ToolType: "api", Properties: "bad"},
		},
		Client: probe.NewClient(endpoint.URL),
	}
	srv := New(runner, zerolog.Nop())

	ui := httptest.NewServer(srv.Handler())
	t.Cleanup(ui.Close)
	return ui, srv
}

func TestIndexServesDashboardPage(t *testing.T) {
	ui, _ := testServer(t)

	resp, err := http.Get(ui.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "EventSource") {
		t.Fatal("page does not wire the event stream")
	}
}

func TestEventsStreamsOneRecordPerTool(t *testing.T) {
	ui, _ := testServer(t)

	resp, err := http.Get(ui.URL + "/events")
	if err != nil {
		t.Fatalf("GET /events: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	var records []probe.Record
	sawDone := false
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "event: done" {
			sawDone = true
			continue
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		if sawDone {
			break // the done payload, not a record
		}
		var rec probe.Record
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &rec); err != nil {
			t.Fatalf("record line is not JSON: %v", err)
		}
		records = append(records, rec)
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Name != "gene_lookup" || records[0].Status != probe.StatusSuccess {
		t.Fatalf("record 0 = %+v", records[0])
	}
	if records[1].Name != "broken" || records[1].Err == "" {
		t.Fatalf("record 1 = %+v", records[1])
	}
	if !sawDone {
		t.Fatal("missing done event")
	}
}
