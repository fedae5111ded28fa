package filestore

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"InfluencerOps/internal/domain"
	"InfluencerOps/internal/ports"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	maxDownloadBytes = 64 << 20
	htmlSniffBytes   = 1000
)

var (
	// ErrEmptyFile is returned when the fetched content has no bytes.
	ErrEmptyFile = errors.New("fetched file is empty")
	// ErrHTMLPage is returned when the share host served an error page
	// instead of the document.
	ErrHTMLPage = errors.New("fetched file is an HTML page, check sharing permissions")
	// ErrBadFormat is returned when the magic number does not match the
	// expected format.
	ErrBadFormat = errors.New("fetched file is not in the expected format")
)

var (
	driveFileIDExpr = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)
	pdfMagic        = []byte("%PDF")
)

// Fetcher materializes shared links and inline base64 payloads as local
// temp files, validating that the bytes actually look like the document
// they claim to be.
type Fetcher struct {
	client *http.Client
	dir    string
}

var _ ports.FileFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; dir defaults to the system temp directory.
func NewFetcher(client *http.Client, dir string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if dir == "" {
		dir = os.TempDir()
	}
	return &Fetcher{client: client, dir: dir}
}

// Fetch writes the referenced document to a local temp file and returns its
// path, size, and a cleanup removing it. Cleanup must run on every exit path.
func (f *Fetcher) Fetch(ctx context.Context, ref domain.FileRef) (string, int64, func(), error) {
	var (
		content []byte
		err     error
	)

	switch {
	case ref.Content != "":
		content, err = base64.StdEncoding.DecodeString(ref.Content)
		if err != nil {
			return "", 0, nil, domain.E(domain.KindInput, "decode inline content", err)
		}
	case ref.URL != "":
		content, err = f.download(ctx, ref.URL)
		if err != nil {
			return "", 0, nil, err
		}
	default:
		return "", 0, nil, domain.E(domain.KindInput, "fetch file", errors.New("missing content or URL"))
	}

	if err := validate(ref.Name, content); err != nil {
		return "", 0, nil, domain.E(domain.KindInput, "validate file", err)
	}

	path := filepath.Join(f.dir, fmt.Sprintf("fetch-%d-%s", time.Now().UnixNano(), filepath.Base(ref.Name)))
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return "", 0, nil, fmt.Errorf("write temp file: %w", err)
	}

	cleanup := func() { _ = os.Remove(path) }
	return path, int64(len(content)), cleanup, nil
}

func (f *Fetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	content, err := f.get(ctx, DirectDownloadURL(rawURL))
	if err != nil {
		return nil, err
	}

	// Share hosts answer large files with an interstitial page carrying the
	// real download link. Follow it once.
	if looksLikeHTML(content) {
		if followup, ok := confirmationLink(content); ok {
			return f.get(ctx, followup)
		}
	}

	return content, nil
}

func (f *Fetcher) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, domain.E(domain.KindInput, "build download request", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, domain.E(domain.KindTransient, "download file", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.E(domain.KindTransient, "download file", fmt.Errorf("host returned %s", resp.Status))
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, domain.E(domain.KindTransient, "read download", err)
	}
	return content, nil
}

// DirectDownloadURL converts a Google Drive shared link into its direct
// download form; any other URL is returned unchanged.
func DirectDownloadURL(shared string) string {
	if !strings.Contains(shared, "drive.google.com") {
		return shared
	}
	if m := driveFileIDExpr.FindStringSubmatch(shared); m != nil {
		return "https://drive.google.com/uc?export=download&id=" + m[1]
	}
	return shared
}

// confirmationLink extracts the follow-up download href from an
// interstitial warning page.
func confirmationLink(content []byte) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", false
	}

	href, ok := doc.Find(`a[href*="download_warning"]`).First().Attr("href")
	if !ok {
		return "", false
	}
	if strings.HasPrefix(href, "/") {
		href = "https://drive.google.com" + href
	}
	return strings.ReplaceAll(href, "&amp;", "&"), true
}

func validate(name string, content []byte) error {
	if len(content) == 0 {
		return ErrEmptyFile
	}
	if looksLikeHTML(content) {
		return ErrHTMLPage
	}
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		if len(content) < len(pdfMagic) || !bytes.Equal(content[:len(pdfMagic)], pdfMagic) {
			return fmt.Errorf("%w: header %q", ErrBadFormat, content[:min(len(content), 4)])
		}
	}
	return nil
}

// looksLikeHTML scans the head of the content for an HTML tag.
func looksLikeHTML(content []byte) bool {
	head := content
	if len(head) > htmlSniffBytes {
		head = head[:htmlSniffBytes]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<html"))
}
