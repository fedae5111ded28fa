package filestore

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"InfluencerOps/internal/domain"
)

var pdfFixture = []byte("%PDF-1.4 fake body")

func fileRef(name, url, content string) domain.FileRef {
	return domain.FileRef{Name: name, URL: url, Content: content}
}

func TestDirectDownloadURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "drive share link",
			in:   "https://drive.google.com/file/d/1AbC_dEf-9/view?usp=sharing",
			want: "https://drive.google.com/uc?export=download&id=1AbC_dEf-9",
		},
		{
			name: "non drive url unchanged",
			in:   "https://example.com/contract.pdf",
			want: "https://example.com/contract.pdf",
		},
		{
			name: "drive url without file id unchanged",
			in:   "https://drive.google.com/open?id=missing",
			want: "https://drive.google.com/open?id=missing",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DirectDownloadURL(tt.in); got != tt.want {
				t.Errorf("DirectDownloadURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFetchInlineContent(t *testing.T) {
	t.Parallel()

	f := NewFetcher(nil, t.TempDir())
	ref := fileRef("contract.pdf", "", base64.StdEncoding.EncodeToString(pdfFixture))

	path, size, cleanup, err := f.Fetch(context.Background(), ref)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	defer cleanup()

	if size != int64(len(pdfFixture)) {
		t.Errorf("size = %d, want %d", size, len(pdfFixture))
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read temp file: %v", err)
	}
	if string(got) != string(pdfFixture) {
		t.Errorf("temp file content = %q, want %q", got, pdfFixture)
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("cleanup left temp file in place")
	}
}

func TestFetchDownload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pdfFixture)
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), t.TempDir())
	path, _, cleanup, err := f.Fetch(context.Background(), fileRef("contract.pdf", srv.URL+"/contract.pdf", ""))
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	defer cleanup()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("temp file missing: %v", err)
	}
}

func TestFetchRejectsHTMLPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>Sign in to continue</body></html>"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), t.TempDir())
	_, _, _, err := f.Fetch(context.Background(), fileRef("contract.pdf", srv.URL, ""))
	if !errors.Is(err, ErrHTMLPage) {
		t.Errorf("Fetch() error = %v, want ErrHTMLPage", err)
	}
}

func TestFetchRejectsBadMagic(t *testing.T) {
	t.Parallel()

	f := NewFetcher(nil, t.TempDir())
	ref := fileRef("contract.pdf", "", base64.StdEncoding.EncodeToString([]byte("plain text, not a pdf")))

	_, _, _, err := f.Fetch(context.Background(), ref)
	if !errors.Is(err, ErrBadFormat) {
		t.Errorf("Fetch() error = %v, want ErrBadFormat", err)
	}
}

func TestFetchRejectsEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), t.TempDir())
	_, _, _, err := f.Fetch(context.Background(), fileRef("contract.pdf", srv.URL, ""))
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("Fetch() error = %v, want ErrEmptyFile", err)
	}
}

func TestFetchFollowsConfirmationPage(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/first", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="` + srv.URL + `/confirmed?download_warning=1">Download anyway</a></body></html>`))
	})
	mux.HandleFunc("/confirmed", func(w http.ResponseWriter, r *http.Request) {
		w.Write(pdfFixture)
	})

	f := NewFetcher(srv.Client(), t.TempDir())
	path, _, cleanup, err := f.Fetch(context.Background(), fileRef("contract.pdf", srv.URL+"/first", ""))
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	defer cleanup()

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read temp file: %v", err)
	}
	if string(got) != string(pdfFixture) {
		t.Errorf("confirmation follow-up not downloaded, got %q", got)
	}
}
