package pathstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(url string) *Client {
	c := NewClient(url, "secret", nil)
	c.backoff = func(int) time.Duration { return time.Millisecond }
	return c
}

func TestPutStory_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	var got struct {
		Value StoryValue `json:"value"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/kv/stories/book.txt", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := testClient(srv.URL).PutStory(context.Background(), "book.txt", "Chapter 1 - A\nx\n\n")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, "book.txt", got.Value.Name)
	assert.Equal(t, "Chapter 1 - A\nx\n\n", got.Value.Text)
}

func TestPutStory_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := testClient(srv.URL).PutStory(context.Background(), "book.txt", "x")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPutStory_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := testClient(srv.URL).PutStory(context.Background(), "book.txt", "x")
	assert.Error(t, err)
	assert.Equal(t, int32(MaxRetries+1), calls.Load())
}

func TestBackoff_Bounds(t *testing.T) {
	for attempt := 0; attempt < 8; attempt++ {
		d := Backoff(attempt)
		base := time.Duration(1<<uint(attempt)) * time.Second
		if base > 30*time.Second {
			base = 30 * time.Second
		}
		assert.GreaterOrEqual(t, d, base)
		assert.Less(t, d, base+base/2)
	}
}
