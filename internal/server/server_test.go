package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/chaz8081/sargam-writer/internal/audio"
	"github.com/chaz8081/sargam-writer/internal/history"
	"github.com/chaz8081/sargam-writer/internal/transcribe"
)

func wavBytes(t *testing.T, freq float64, seconds float64) []byte {
	t.Helper()
	const sr = 22050
	samples := make([]float32, int(seconds*sr))
	for i := range samples {
		samples[i] = float32(0.6 * math.Sin(2*math.Pi*freq*float64(i)/sr))
	}
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := audio.WriteWAV(path, &audio.Waveform{Samples: samples, SampleRate: sr}); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func newTestServer(t *testing.T, withHistory bool, maxUpload int64) *httptest.Server {
	t.Helper()
	opts := Options{AllowedOrigins: []string{"https://example.test"}, MaxUploadBytes: maxUpload}
	if withHistory {
		store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
		if err != nil {
			t.Fatalf("history.Open: %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		opts.History = store
	}
	ts := httptest.NewServer(New(transcribe.New(), opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, false, 0)
	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body := decode[map[string]string](t, resp); body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestTranscribeUpload(t *testing.T) {
	ts := newTestServer(t, true, 0)

	resp, err := http.Post(ts.URL+"/api/transcriptions?name=a4.wav&collapse=true", "audio/wav", bytes.NewReader(wavBytes(t, 440, 0.5)))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decode[transcriptionResponse](t, resp)
	if body.Notation != "Dha" {
		t.Errorf("notation = %q, want %q", body.Notation, "Dha")
	}
	if body.Source != "a4.wav" || body.ID == "" {
		t.Errorf("source/id = %q/%q", body.Source, body.ID)
	}
	if len(body.Events) == 0 || body.Events[0].Note != "A4" || body.Events[0].Swara != "Dha" {
		t.Errorf("events = %+v", body.Events)
	}

	// the run is in history under the same id
	resp, err = http.Get(ts.URL + "/api/transcriptions/" + body.ID)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	entry := decode[entryResponse](t, resp)
	if entry.Source != "a4.wav" || entry.Error != nil {
		t.Errorf("entry = %+v", entry)
	}
}

func TestTranscribeUploadErrors(t *testing.T) {
	ts := newTestServer(t, true, 0)

	tests := []struct {
		name     string
		body     []byte
		wantKind string
	}{
		{"not audio", []byte("definitely not audio"), "DecodeError"},
		{"silence", wavBytes(t, 0, 0.5), "ExtractionError"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/transcriptions?name=clip.wav", "audio/wav", bytes.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", resp.StatusCode)
			}
			if body := decode[errorResponse](t, resp); body.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q (%s)", body.Kind, tt.wantKind, body.Message)
			}
		})
	}

	resp, err := http.Get(ts.URL + "/api/transcriptions?limit=10")
	if err != nil {
		t.Fatal(err)
	}
	entries := decode[[]entryResponse](t, resp)
	if len(entries) != 2 {
		t.Fatalf("history has %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Error == nil {
			t.Errorf("entry %s should carry its error", e.ID)
		}
	}
}

func TestUploadTooLarge(t *testing.T) {
	ts := newTestServer(t, false, 64)
	resp, err := http.Post(ts.URL+"/api/transcriptions", "audio/wav", bytes.NewReader(make([]byte, 1024)))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestHistoryDisabled(t *testing.T) {
	ts := newTestServer(t, false, 0)
	for _, path := range []string{"/api/transcriptions", "/api/transcriptions/abc"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestGetUnknownEntry(t *testing.T) {
	ts := newTestServer(t, true, 0)
	resp, err := http.Get(ts.URL + "/api/transcriptions/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, false, 0)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/health", nil)
	req.Header.Set("Origin", "https://example.test")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://example.test" {
		t.Errorf("Access-Control-Allow-Origin = %q, want the allowed origin", got)
	}

	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/api/health", nil)
	req.Header.Set("Origin", "https://elsewhere.test")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected Access-Control-Allow-Origin %q for a foreign origin", got)
	}
}
