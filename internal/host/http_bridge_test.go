package host

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestHTTPBridge_QueueExport_Success(t *testing.T) {
	var receivedPath string
	var receivedAuth string
	var receivedArgs map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedPath = r.URL.Path
		receivedAuth = r.Header.Get("Authorization")
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}

		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &receivedArgs)

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success": true, "jobID": "job-42"}`))
	}))
	defer server.Close()

	bridge := NewHTTPBridge(server.URL, "test-token", testLogger())

	jobID, err := bridge.QueueExport(context.Background(), "Main Edit", "/exports/Main Edit_V1.mp4", "/presets/youtube.epr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if jobID != "job-42" {
		t.Errorf("jobID = %q, want %q", jobID, "job-42")
	}
	if receivedPath != "/rpc/exportSequenceByName" {
		t.Errorf("path = %q, want /rpc/exportSequenceByName", receivedPath)
	}
	if receivedAuth != "Bearer test-token" {
		t.Errorf("auth = %q, want %q", receivedAuth, "Bearer test-token")
	}
	if receivedArgs["name"] != "Main Edit" {
		t.Errorf("args.name = %v, want %q", receivedArgs["name"], "Main Edit")
	}
	if receivedArgs["outputPath"] != "/exports/Main Edit_V1.mp4" {
		t.Errorf("args.outputPath = %v", receivedArgs["outputPath"])
	}
}

func TestHTTPBridge_SelectedSequences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rpc/getSelectedSequences" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success": true, "sequences": [{"name":"A","nodeId":"1"},{"name":"B","nodeId":"2"}], "count": 2}`))
	}))
	defer server.Close()

	bridge := NewHTTPBridge(server.URL, "", testLogger())

	seqs, err := bridge.SelectedSequences(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seqs) != 2 {
		t.Fatalf("len(seqs) = %d, want 2", len(seqs))
	}
	if seqs[0].Name != "A" || seqs[1].NodeID != "2" {
		t.Errorf("sequences parsed incorrectly: %+v", seqs)
	}
}

func TestHTTPBridge_HostReportedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success": false, "error": "no project open"}`))
	}))
	defer server.Close()

	bridge := NewHTTPBridge(server.URL, "", testLogger())

	_, err := bridge.ProjectExportsPath(context.Background(), "EXPORTS", 0)
	if err == nil {
		t.Fatal("expected error for success=false response")
	}

	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("error type = %T, want *CallError", err)
	}
	if callErr.Message != "no project open" {
		t.Errorf("message = %q, want %q", callErr.Message, "no project open")
	}
	if callErr.IsRetryable() {
		t.Error("deliberate host refusal should not be retryable")
	}
}

func TestHTTPBridge_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success": tru`))
	}))
	defer server.Close()

	bridge := NewHTTPBridge(server.URL, "", testLogger())

	if err := bridge.StartBatch(context.Background()); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestHTTPBridge_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("bridge crashed"))
	}))
	defer server.Close()

	bridge := NewHTTPBridge(server.URL, "", testLogger())

	err := bridge.StartBatch(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}

	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("error type = %T, want *CallError", err)
	}
	if !callErr.IsRetryable() {
		t.Error("5xx bridge errors should be retryable")
	}
}

func TestHTTPBridge_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	bridge := NewHTTPBridge(server.URL, "", testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := bridge.SelectedSequences(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestHTTPBridge_SystemInfo_NoEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"isWindows": true, "downloadsPath": "C:\\Users\\editor\\Downloads"}`))
	}))
	defer server.Close()

	bridge := NewHTTPBridge(server.URL, "", testLogger())

	info, err := bridge.SystemInfo(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !info.IsWindows {
		t.Error("IsWindows = false, want true")
	}
	if info.DownloadsPath != `C:\Users\editor\Downloads` {
		t.Errorf("DownloadsPath = %q", info.DownloadsPath)
	}
}

func TestCachedProbe_CachesStatus(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"isWindows": false, "downloadsPath": "/Users/editor/Downloads"}`))
	}))
	defer server.Close()

	probe := NewCachedProbe(NewHTTPBridge(server.URL, "", testLogger()), testLogger())

	first := probe.Get(context.Background())
	second := probe.Get(context.Background())

	if !first.Available || !second.Available {
		t.Error("probe should report bridge available")
	}
	if calls != 1 {
		t.Errorf("bridge calls = %d, want 1 (second Get must hit cache)", calls)
	}
}

func TestCachedProbe_UnavailableBridge(t *testing.T) {
	probe := NewCachedProbe(NewStubBridge(testLogger()), testLogger())

	status := probe.Get(context.Background())
	if status.Available {
		t.Error("stub bridge should be reported unavailable")
	}
	if status.Error == "" {
		t.Error("unavailable status should carry the error")
	}
}
