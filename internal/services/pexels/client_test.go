package pexels

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchSendsQueryAndAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		q := r.URL.Query()
		if q.Get("query") != "desert night, dark, cinematic" || q.Get("orientation") != "portrait" ||
			q.Get("per_page") != "15" || q.Get("page") != "2" {
			t.Errorf("unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":2,"per_page":15,"total_results":1,"videos":[
			{"id":42,"duration":12,"video_files":[{"id":1,"width":720,"height":1280,"link":"http://x/720.mp4"},{"id":2,"width":1080,"height":1920,"link":"http://x/1080.mp4"}]}]}`))
	}))
	defer server.Close()

	client, err := New("secret", server.URL+"/")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	resp, err := client.Search(context.Background(), Query{Text: "desert night, dark, cinematic", Page: 2, PerPage: 15, Orientation: "portrait"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(resp.Videos) != 1 || resp.Videos[0].ID != 42 || resp.Videos[0].Duration != 12 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(resp.Videos[0].VideoFiles) != 2 || resp.Videos[0].VideoFiles[1].Width != 1080 {
		t.Fatalf("unexpected renditions %+v", resp.Videos[0].VideoFiles)
	}
}

func TestSearchReportsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, _ := New("secret", server.URL)
	_, err := client.Search(context.Background(), Query{Text: "x"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 status error, got %v", err)
	}
}

func TestDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			http.Error(w, "api key leaked to download host", http.StatusBadRequest)
			return
		}
		if r.URL.Path == "/missing.mp4" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("video-bytes"))
	}))
	defer server.Close()

	client, _ := New("secret", server.URL)
	var buf bytes.Buffer
	n, err := client.Download(context.Background(), server.URL+"/clip.mp4", &buf)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if n != int64(len("video-bytes")) || buf.String() != "video-bytes" {
		t.Fatalf("unexpected body %q (%d)", buf.String(), n)
	}

	_, err = client.Download(context.Background(), server.URL+"/missing.mp4", &buf)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New("  ", ""); err == nil {
		t.Fatal("expected error for missing key")
	}
	client, err := New("k", "")
	if err != nil || client.baseURL != DefaultBaseURL {
		t.Fatalf("expected default base url, got %+v (%v)", client, err)
	}
}
