package huggingface

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

func TestRecognizeSendsBearerTokenAndParsesEntities(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody inferenceRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"entity_group":"MISC","score":0.98,"word":"Python","start":0,"end":6},{"entity_group":"ORG","score":0.91,"word":"Acme","start":10,"end":14}]`))
	}))
	defer srv.Close()

	client := NewClient(context.Background(), Options{
		BaseURL: srv.URL + "/models/",
		Model:   "dslim/bert-base-NER",
		Token:   "test-token",
		Timeout: 5 * time.Second,
	})

	entities, err := client.Recognize(context.Background(), "Python at Acme")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotPath != "/models/dslim/bert-base-NER" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotBody.Inputs != "Python at Acme" || gotBody.Parameters.AggregationStrategy != "simple" {
		t.Fatalf("unexpected request body %+v", gotBody)
	}
	if len(entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(entities))
	}
	if entities[0].Word != "Python" || entities[0].Group != "MISC" {
		t.Fatalf("unexpected first entity %+v", entities[0])
	}
}

func TestRecognizeAcceptsNestedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[{"entity_group":"MISC","score":0.9,"word":"Go"}]]`))
	}))
	defer srv.Close()

	client := NewClient(context.Background(), Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	entities, err := client.Recognize(context.Background(), "Go")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if len(entities) != 1 || entities[0].Word != "Go" {
		t.Fatalf("unexpected entities %+v", entities)
	}
}

func TestRecognizeReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model dslim/bert-base-NER is currently loading","estimated_time":20}`))
	}))
	defer srv.Close()

	client := NewClient(context.Background(), Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := client.Recognize(context.Background(), "Python")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "loading") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestRecognizeSkipsBlankInput(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewClient(context.Background(), Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	entities, err := client.Recognize(context.Background(), "   \n ")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if entities != nil || called {
		t.Fatalf("expected no request for blank input")
	}
}
