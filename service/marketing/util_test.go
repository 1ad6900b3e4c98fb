package marketing

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

type backendStub struct {
	mut      sync.Mutex
	requests []recordedRequest

	status int
	body   string
}

func newBackendStub(t *testing.T, status int, body string) (*backendStub, *httptest.Server) {
	stub := &backendStub{status: status, body: body}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		require.Equal(t, nil, err)

		stub.mut.Lock()
		stub.requests = append(stub.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   data,
		})
		stub.mut.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(stub.status)
		_, _ = w.Write([]byte(stub.body))
	}))
	t.Cleanup(server.Close)
	return stub, server
}

func (s *backendStub) last(t *testing.T) recordedRequest {
	s.mut.Lock()
	defer s.mut.Unlock()
	require.NotEmpty(t, s.requests)
	return s.requests[len(s.requests)-1]
}

func (s *backendStub) count() int {
	s.mut.Lock()
	defer s.mut.Unlock()
	return len(s.requests)
}

func newTestClient(t *testing.T, server *httptest.Server, options ...Option) *Client {
	c, err := New(server.URL, options...)
	require.Equal(t, nil, err)
	return c
}

func mustJSON(t *testing.T, v interface{}) string {
	data, err := json.Marshal(v)
	require.Equal(t, nil, err)
	return string(data)
}
