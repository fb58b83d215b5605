package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookstore/internal/book"
	"bookstore/internal/platform/database"
)

// PowerUp is the book most tests start with.
var PowerUp = book.Book{
	ISBN:      "0691161518",
	AmazonURL: "http://a.co/eobPtX2",
	Author:    "Matthew Lane",
	Language:  "english",
	Pages:     264,
	Publisher: "Princeton University Press",
	Title:     "Power-Up: Unlocking the Hidden Mathematics in Video Games",
	Year:      2017,
}

// WayOfKings is a second, not yet stored book.
var WayOfKings = book.Book{
	ISBN:      "9780765376671",
	AmazonURL: "https://us.macmillan.com/books/9780765376671/thewayofkings",
	Author:    "Brandon Sanderson",
	Language:  "english",
	Pages:     1008,
	Publisher: "Tor Books",
	Title:     "The Way of Kings, Book One of the Stormlight Archive",
	Year:      2014,
}

// NewSQLiteStore returns a migrated, empty in-memory store that is closed
// when the test ends.
func NewSQLiteStore(t testing.TB) *database.Store {
	t.Helper()
	ctx := context.Background()

	store, err := database.Open(ctx, "sqlite::memory:", 2*time.Second)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(store.Close)

	if _, err := database.MigrateUp(ctx, store); err != nil {
		t.Fatalf("migrate sqlite store: %v", err)
	}
	return store
}

// NewRequest creates a new HTTP request for testing. A non-nil body is
// marshalled to JSON unless it is already a string or []byte.
func NewRequest(method, path string, body any) *http.Request {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		encoded, _ := json.Marshal(b)
		reader = bytes.NewReader(encoded)
	}
	r := httptest.NewRequest(method, path, reader)
	if reader != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	return r
}

// DecodeBody decodes the recorded JSON response into a value of type T.
func DecodeBody[T any](t testing.TB, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode response body %q: %v", w.Body.String(), err)
	}
	return out
}

// Without returns the book as a JSON object with the named properties removed.
func Without(b book.Book, names ...string) map[string]any {
	encoded, _ := json.Marshal(b)
	var m map[string]any
	_ = json.Unmarshal(encoded, &m)
	for _, name := range names {
		delete(m, name)
	}
	return m
}
