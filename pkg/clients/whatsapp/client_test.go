package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mamadbah2/boilerdesk/internal/config"
)

func TestSendText(t *testing.T) {
	var got textMessage
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(config.WhatsAppConfig{
		BaseURL:       srv.URL + "/",
		APIVersion:    "v22.0",
		AccessToken:   "secret",
		PhoneNumberID: "123",
	}, nil)

	id, err := client.SendText(context.Background(), "120363@g.us", "দাম")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "wamid.1" {
		t.Fatalf("unexpected id %q", id)
	}
	if auth != "Bearer secret" || path != "/v22.0/123/messages" {
		t.Fatalf("unexpected request auth=%q path=%q", auth, path)
	}
	if got.RecipientType != "group" || got.Text.Body != "দাম" || got.MessagingProduct != "whatsapp" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestSendTextAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(config.WhatsAppConfig{BaseURL: srv.URL, APIVersion: "v22.0", PhoneNumberID: "123"}, nil)
	_, err := client.SendText(context.Background(), "8801700000000", "hi")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Code != 190 {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}
