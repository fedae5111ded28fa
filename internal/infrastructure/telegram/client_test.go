package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendPostsFormEncodedMessage(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = map[string]string{
			"chat_id":    r.PostFormValue("chat_id"),
			"text":       r.PostFormValue("text"),
			"parse_mode": r.PostFormValue("parse_mode"),
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	c := NewClient("123:abc")
	c.apiBase = srv.URL

	if err := c.Send(context.Background(), 42, "<b>hi</b>"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if gotForm["chat_id"] != "42" || gotForm["text"] != "<b>hi</b>" {
		t.Errorf("form = %v", gotForm)
	}
	if gotForm["parse_mode"] != "HTML" {
		t.Errorf("parse_mode = %q, want HTML", gotForm["parse_mode"])
	}
}

func TestSendSurfacesAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("123:abc")
	c.apiBase = srv.URL

	err := c.Send(context.Background(), 42, "hi")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("Send() error = %v, want status in message", err)
	}
}

func TestSendWithoutToken(t *testing.T) {
	t.Parallel()

	c := NewClient("")
	if err := c.Send(context.Background(), 1, "hi"); err == nil {
		t.Error("Send() with empty token should fail")
	}
}
