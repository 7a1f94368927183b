package ner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClientExtractEntities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/extract_entities" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req extractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Text == "" {
			t.Error("expected non-empty text")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"entities": []map[string]interface{}{
				{"text": "metformin", "label": "MEDICATION", "confidence": 0.97},
			},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	entities, err := client.ExtractEntities(context.Background(), "on metformin 500mg")
	if err != nil {
		t.Fatalf("ExtractEntities: %v", err)
	}
	if len(entities) != 1 || entities[0].Text != "metformin" || entities[0].Label != "MEDICATION" {
		t.Fatalf("unexpected entities: %+v", entities)
	}
}

func TestHTTPClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	if _, err := client.ExtractEntities(context.Background(), "text"); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestHTTPClientTimeout(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	client := NewHTTPClient(server.URL, 50*time.Millisecond)
	if _, err := client.ExtractEntities(context.Background(), "text"); err == nil {
		t.Fatal("expected timeout error")
	}
}
