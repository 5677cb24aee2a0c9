package portal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-adala-mirror/internal/fetch"
	"go-adala-mirror/internal/portal"
)

func newClient(t *testing.T, base string) *portal.Client {
	t.Helper()
	cl, err := fetch.New(fetch.Options{Timeout: 2 * time.Second})
	if err != nil { t.Fatalf("new client: %v", err) }
	return portal.New(base, cl)
}

func TestListFolder_NormalizesAndSkipsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/folders/12" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		// ids 同时出现数字与字符串两种形态；另含缺 id/缺 path 的坏条目
		_, _ = w.Write([]byte(`{
            "name": " القوانين ",
            "folders": [
                {"id": 34, "name": "folder-a"},
                {"id": "35", "name": "folder-b"},
                {"name": "no-id"}
            ],
            "files": [
                {"name": "doc.pdf", "path": "files/doc.pdf"},
                {"name": "no-path"}
            ]
        }`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	f, err := c.ListFolder(context.Background(), "12")
	if err != nil { t.Fatalf("list folder: %v", err) }
	if f.Name != "القوانين" { t.Fatalf("name = %q", f.Name) }
	if len(f.Folders) != 2 || f.Folders[0].ID != "34" || f.Folders[1].ID != "35" {
		t.Fatalf("folders = %+v", f.Folders)
	}
	if len(f.Files) != 1 || f.Files[0].Path != "files/doc.pdf" {
		t.Fatalf("files = %+v", f.Files)
	}
}

func TestListFolder_EmptyNameFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"folders": [], "files": []}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	f, err := c.ListFolder(context.Background(), "99")
	if err != nil { t.Fatalf("list folder: %v", err) }
	if f.Name != "folder_99" { t.Fatalf("fallback name = %q", f.Name) }
}

func TestListFolder_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	if _, err := c.ListFolder(context.Background(), "1"); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestFileURL(t *testing.T) {
	c := newClient(t, "https://adala.example/")
	if got := c.FileURL("/files/a.pdf"); got != "https://adala.example/api/files/a.pdf" {
		t.Fatalf("file url = %q", got)
	}
	if got := c.FileURL("files/b.pdf"); got != "https://adala.example/api/files/b.pdf" {
		t.Fatalf("file url = %q", got)
	}
}
