package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_Send(t *testing.T) {
	var got Message
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key")
	msg := Message{
		From:    "billing@example.com",
		To:      "client@example.com",
		Subject: "Invoice INV-2026-0001",
		Text:    "Please pay.",
	}

	if err := client.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if gotAuth != "Bearer secret-key" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if got != msg {
		t.Errorf("server received %+v, want %+v", got, msg)
	}
}

func TestClient_SendRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"invalid recipient"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key")

	err := client.Send(context.Background(), Message{To: "nope"})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "422") {
		t.Errorf("error should carry the status code, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid recipient") {
		t.Errorf("error should surface the response body, got %v", err)
	}
}
