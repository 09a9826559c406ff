package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGetJSONReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != userAgent {
			t.Errorf("User-Agent = %q", got)
		}
		if got := r.Header.Get("X-Test"); got != "yes" {
			t.Errorf("X-Test = %q", got)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := newHTTPClient(0, 0)
	body, err := c.getJSON(context.Background(), server.URL, map[string]string{"X-Test": "yes"})
	if err != nil {
		t.Fatalf("getJSON: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
}

func TestGetJSONNon200IsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	defer server.Close()

	c := newHTTPClient(0, 0)
	if _, err := c.getJSON(context.Background(), server.URL, nil); err == nil {
		t.Fatal("non-2xx status must surface as an error")
	} else if !strings.Contains(err.Error(), "502") {
		t.Errorf("error should name the status, got %v", err)
	}
}

func TestGetJSONCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newHTTPClient(1, 1)
	if _, err := c.getJSON(ctx, "http://unused.invalid", nil); err == nil {
		t.Fatal("cancelled context must abort the call")
	}
}
