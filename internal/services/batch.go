package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/ytclone/internal/models"
	"github.com/desertthunder/ytclone/internal/shared"
)

// BatchEntry is one playlistItems.insert call in a grouped request.
//
// Key is the caller's correlation key. It is handed back to the callback and never sent to the server.
type BatchEntry struct {
	Key  string
	Item models.Item
}

// BatchCallback receives the outcome of one batch entry. Exactly one of inserted and err is non-nil.
//
// Returning an error stops delivery and makes [YouTubeService.InsertItems] return that error.
type BatchCallback func(key string, inserted *models.Item, err error) error

// InsertItems inserts entries through the batch endpoint, invoking fn once per entry before returning.
//
// Entries beyond [MaxBatchSize] are sent in follow-up requests. Parts are delivered in the order the server
// returns them, which need not match submission order. A part the server omits is reported with
// [shared.ErrMalformedResponse]. An error for the whole request (transport failure, non-2xx batch status) is
// returned without invoking fn for the entries of that request.
func (y *YouTubeService) InsertItems(ctx context.Context, entries []BatchEntry, fn BatchCallback) error {
	for start := 0; start < len(entries); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(entries))
		if err := y.insertChunk(ctx, entries[start:end], fn); err != nil {
			return err
		}
	}
	return nil
}

func (y *YouTubeService) insertChunk(ctx context.Context, entries []BatchEntry, fn BatchCallback) error {
	body, contentType, err := y.encodeBatch(entries)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.batchURL, body)
	if err != nil {
		return fmt.Errorf("failed to create batch request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("batch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return newAPIError(resp.StatusCode, data)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		return fmt.Errorf("%w: unexpected batch content type %q", shared.ErrMalformedResponse, resp.Header.Get("Content-Type"))
	}

	delivered := make([]bool, len(entries))
	reader := multipart.NewReader(resp.Body, params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: failed to read batch response: %w", shared.ErrMalformedResponse, err)
		}

		idx, ok := parseContentID(part.Header.Get("Content-ID"), len(entries))
		if !ok || delivered[idx] {
			part.Close()
			continue
		}
		delivered[idx] = true

		inserted, partErr := decodeBatchPart(part)
		part.Close()
		if err := fn(entries[idx].Key, inserted, partErr); err != nil {
			return err
		}
	}

	for i, done := range delivered {
		if done {
			continue
		}
		missing := fmt.Errorf("%w: no response for batch part %d", shared.ErrMalformedResponse, i+1)
		if err := fn(entries[i].Key, nil, missing); err != nil {
			return err
		}
	}
	return nil
}

// encodeBatch writes one application/http part per entry. Content-IDs are the 1-based entry index.
func (y *YouTubeService) encodeBatch(entries []BatchEntry) (io.Reader, string, error) {
	itemsPath := "/playlistItems"
	if u, err := url.Parse(y.apiURL); err == nil {
		itemsPath = strings.TrimRight(u.Path, "/") + itemsPath
	}
	target := itemsPath + "?" + url.Values{"part": {insertItemParts}}.Encode()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i, entry := range entries {
		payload, err := json.Marshal(playlistItemResourceFrom(entry.Item))
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal batch entry: %w", err)
		}

		header := textproto.MIMEHeader{}
		header.Set("Content-Type", "application/http")
		header.Set("Content-Transfer-Encoding", "binary")
		header.Set("Content-ID", "<"+strconv.Itoa(i+1)+">")

		pw, err := mw.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create batch part: %w", err)
		}
		fmt.Fprintf(pw, "POST %s HTTP/1.1\r\nContent-Type: application/json\r\nContent-Length: %d\r\n\r\n", target, len(payload))
		pw.Write(payload)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish batch body: %w", err)
	}

	return &buf, "multipart/mixed; boundary=" + mw.Boundary(), nil
}

// decodeBatchPart reads the HTTP response embedded in a batch part.
func decodeBatchPart(part io.Reader) (*models.Item, error) {
	resp, err := http.ReadResponse(bufio.NewReader(part), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse batch part: %w", shared.ErrMalformedResponse, err)
	}
	defer resp.Body.Close()

	var created PlaylistItemResource
	if err := decodeResponse(resp.StatusCode, resp.Body, &created); err != nil {
		return nil, err
	}
	item := created.toModel()
	return &item, nil
}

// parseContentID maps "<response-3>" (or "<3>") back to entry index 2.
func parseContentID(raw string, n int) (int, bool) {
	id := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(raw), "<"), ">")
	id = strings.TrimPrefix(id, "response-")
	num, err := strconv.Atoi(id)
	if err != nil || num < 1 || num > n {
		return 0, false
	}
	return num - 1, true
}
