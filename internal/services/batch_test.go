package services

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/ytclone/internal/models"
	"github.com/desertthunder/ytclone/internal/shared"
)

type batchPart struct {
	contentID string
	target    string
	item      PlaylistItemResource
}

// readBatch decodes a batch request into its parts.
func readBatch(t *testing.T, r *http.Request) []batchPart {
	t.Helper()

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/mixed" {
		t.Fatalf("unexpected content type %q", r.Header.Get("Content-Type"))
	}

	var parts []batchPart
	mr := multipart.NewReader(r.Body, params["boundary"])
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read part: %v", err)
		}
		if p.Header.Get("Content-Type") != "application/http" {
			t.Errorf("unexpected part content type %q", p.Header.Get("Content-Type"))
		}

		inner, err := http.ReadRequest(bufio.NewReader(p))
		if err != nil {
			t.Fatalf("failed to read inner request: %v", err)
		}
		var item PlaylistItemResource
		if err := json.NewDecoder(inner.Body).Decode(&item); err != nil {
			t.Fatalf("failed to decode inner body: %v", err)
		}
		parts = append(parts, batchPart{contentID: p.Header.Get("Content-ID"), target: inner.URL.String(), item: item})
	}
	return parts
}

// batchReply is one part of a fake batch response.
type batchReply struct {
	contentID string
	status    int
	body      string
}

func writeBatch(w http.ResponseWriter, replies []batchReply) {
	mw := multipart.NewWriter(w)
	w.Header().Set("Content-Type", "multipart/mixed; boundary="+mw.Boundary())
	for _, reply := range replies {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", "application/http")
		header.Set("Content-ID", reply.contentID)
		pw, _ := mw.CreatePart(header)
		fmt.Fprintf(pw, "HTTP/1.1 %d %s\r\nContent-Type: application/json\r\nContent-Length: %d\r\n\r\n%s",
			reply.status, http.StatusText(reply.status), len(reply.body), reply.body)
	}
	mw.Close()
}

func insertedBody(id string, position int) string {
	return fmt.Sprintf(`{"id": %q, "snippet": {"playlistId": "PLnew", "position": %d, "resourceId": {"kind": "youtube#video", "videoId": "v%d"}}}`, id, position, position)
}

func entriesFor(n int) []BatchEntry {
	entries := make([]BatchEntry, n)
	for i := range entries {
		entries[i] = BatchEntry{
			Key: fmt.Sprintf("src%d", i),
			Item: models.Item{
				PlaylistID: "PLnew",
				Position:   i,
				Resource:   models.Resource{Kind: "youtube#video", VideoID: fmt.Sprintf("v%d", i)},
			},
		}
	}
	return entries
}

type outcome struct {
	item *models.Item
	err  error
}

func collect(results map[string]outcome) BatchCallback {
	return func(key string, inserted *models.Item, err error) error {
		results[key] = outcome{inserted, err}
		return nil
	}
}

func TestInsertItems(t *testing.T) {
	t.Run("encodes parts without correlation keys", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/batch/youtube/v3" {
				t.Errorf("expected batch path, got %s", r.URL.Path)
			}

			parts := readBatch(t, r)
			if len(parts) != 2 {
				t.Fatalf("expected 2 parts, got %d", len(parts))
			}
			for i, p := range parts {
				if want := fmt.Sprintf("<%d>", i+1); p.contentID != want {
					t.Errorf("expected content id %s, got %s", want, p.contentID)
				}
				if !strings.HasPrefix(p.target, "/youtube/v3/playlistItems?part=") {
					t.Errorf("unexpected inner target %s", p.target)
				}
				if *p.item.Snippet.Position != i {
					t.Errorf("expected position %d, got %d", i, *p.item.Snippet.Position)
				}
				if strings.Contains(p.contentID, "src") {
					t.Error("correlation key leaked into request")
				}
			}

			writeBatch(w, []batchReply{
				{"<response-1>", 200, insertedBody("n0", 0)},
				{"<response-2>", 200, insertedBody("n1", 1)},
			})
		}))
		defer server.Close()

		svc := NewYouTubeService(YouTubeOpts{APIURL: server.URL + "/youtube/v3", BatchURL: server.URL + "/batch/youtube/v3"})
		results := map[string]outcome{}
		if err := svc.InsertItems(context.Background(), entriesFor(2), collect(results)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results["src1"].item == nil || results["src1"].item.ID != "n1" {
			t.Errorf("unexpected result for src1: %+v", results["src1"])
		}
	})

	t.Run("correlates out-of-order parts", func(t *testing.T) {
		var order []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			readBatch(t, r)
			writeBatch(w, []batchReply{
				{"<response-3>", 404, `{"error": {"message": "video gone", "errors": [{"reason": "videoNotFound"}]}}`},
				{"<response-1>", 200, insertedBody("n0", 0)},
				{"<response-2>", 503, `{"error": {"message": "backend"}}`},
			})
		}))
		defer server.Close()

		svc := NewYouTubeService(YouTubeOpts{APIURL: server.URL, BatchURL: server.URL})
		results := map[string]outcome{}
		err := svc.InsertItems(context.Background(), entriesFor(3), func(key string, inserted *models.Item, err error) error {
			order = append(order, key)
			results[key] = outcome{inserted, err}
			return nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if strings.Join(order, ",") != "src2,src0,src1" {
			t.Errorf("expected arrival order, got %v", order)
		}

		var apiErr *APIError
		if !errors.As(results["src2"].err, &apiErr) || apiErr.StatusCode != 404 {
			t.Errorf("expected 404 for src2, got %v", results["src2"].err)
		}
		if !errors.As(results["src1"].err, &apiErr) || apiErr.StatusCode != 503 {
			t.Errorf("expected 503 for src1, got %v", results["src1"].err)
		}
		if results["src0"].err != nil {
			t.Errorf("expected success for src0, got %v", results["src0"].err)
		}
	})

	t.Run("reports missing parts as malformed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			readBatch(t, r)
			writeBatch(w, []batchReply{{"<response-1>", 200, insertedBody("n0", 0)}})
		}))
		defer server.Close()

		svc := NewYouTubeService(YouTubeOpts{APIURL: server.URL, BatchURL: server.URL})
		results := map[string]outcome{}
		if err := svc.InsertItems(context.Background(), entriesFor(2), collect(results)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !errors.Is(results["src1"].err, shared.ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse for missing part, got %v", results["src1"].err)
		}
	})

	t.Run("whole batch failure skips callback", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		svc := NewYouTubeService(YouTubeOpts{APIURL: server.URL, BatchURL: server.URL})
		called := false
		err := svc.InsertItems(context.Background(), entriesFor(2), func(string, *models.Item, error) error {
			called = true
			return nil
		})

		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != 503 {
			t.Errorf("expected 503 APIError, got %v", err)
		}
		if called {
			t.Error("expected callback not to run")
		}
	})

	t.Run("callback error stops delivery", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			readBatch(t, r)
			writeBatch(w, []batchReply{
				{"<response-1>", 200, insertedBody("n0", 0)},
				{"<response-2>", 200, insertedBody("n1", 1)},
			})
		}))
		defer server.Close()

		stop := errors.New("stop")
		calls := 0
		svc := NewYouTubeService(YouTubeOpts{APIURL: server.URL, BatchURL: server.URL})
		err := svc.InsertItems(context.Background(), entriesFor(2), func(string, *models.Item, error) error {
			calls++
			return stop
		})
		if !errors.Is(err, stop) {
			t.Errorf("expected callback error, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("chunks above MaxBatchSize", func(t *testing.T) {
		var mu sync.Mutex
		var sizes []int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parts := readBatch(t, r)
			mu.Lock()
			sizes = append(sizes, len(parts))
			mu.Unlock()

			replies := make([]batchReply, len(parts))
			for i := range parts {
				replies[i] = batchReply{fmt.Sprintf("<response-%d>", i+1), 200, insertedBody("n", i)}
			}
			writeBatch(w, replies)
		}))
		defer server.Close()

		svc := NewYouTubeService(YouTubeOpts{APIURL: server.URL, BatchURL: server.URL})
		results := map[string]outcome{}
		if err := svc.InsertItems(context.Background(), entriesFor(MaxBatchSize+2), collect(results)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(sizes) != 2 || sizes[0] != MaxBatchSize || sizes[1] != 2 {
			t.Errorf("unexpected chunk sizes %v", sizes)
		}
		if len(results) != MaxBatchSize+2 {
			t.Errorf("expected %d results, got %d", MaxBatchSize+2, len(results))
		}
	})
}

func TestParseContentID(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"<response-1>", 0, true},
		{"<3>", 2, true},
		{" <response-3> ", 2, true},
		{"<response-4>", 0, false},
		{"<response-0>", 0, false},
		{"<response-abc>", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseContentID(tt.raw, 3)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parseContentID(%q) = %d, %v; want %d, %v", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
