package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

func fileJSON(name, path, content string) map[string]any {
	return map[string]any{
		"type":     "file",
		"name":     name,
		"path":     path,
		"encoding": "base64",
		"content":  base64.StdEncoding.EncodeToString([]byte(content)),
	}
}

func newTestConnector(t *testing.T) (*Connector, *Client, *[]string) {
	t.Helper()
	var refs []string
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/golang/go/contents/doc/go_spec.md", func(w http.ResponseWriter, r *http.Request) {
		refs = append(refs, r.URL.Query().Get("ref"))
		w.Header().Set(HeaderRateRemaining, "4999")
		w.Header().Set(HeaderRateLimit, "5000")
		w.Header().Set(HeaderRateReset, strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
		_ = json.NewEncoder(w).Encode(fileJSON("go_spec.md", "doc/go_spec.md", "# The Go Spec"))
	})
	mux.HandleFunc("/repos/golang/go/contents/doc", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{fileJSON("a.md", "doc/a.md", "")})
	})
	mux.HandleFunc("/repos/golang/go/readme", func(w http.ResponseWriter, r *http.Request) {
		refs = append(refs, r.URL.Query().Get("ref"))
		_ = json.NewEncoder(w).Encode(fileJSON("README.md", "README.md", "# Go"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := NewClient("").WithBaseURL(srv.URL)
	require.NoError(t, err)
	return New(client), client, &refs
}

func TestConnector_Kind(t *testing.T) {
	assert.Equal(t, domain.SourceKindGitHub, New(NewClient("")).Kind())
}

func TestConnector_FetchFile(t *testing.T) {
	c, client, refs := newTestConnector(t)

	raw, err := c.Fetch(context.Background(), "github:golang/go/doc/go_spec.md@release-branch")
	require.NoError(t, err)

	assert.Equal(t, "github:golang/go/doc/go_spec.md@release-branch", raw.Source)
	assert.Equal(t, "go_spec.md", raw.Name)
	assert.Equal(t, "text/markdown", raw.MIMEType)
	assert.Equal(t, "# The Go Spec", string(raw.Content))
	assert.Equal(t, []string{"release-branch"}, *refs)
	assert.Equal(t, 4999, client.RateLimiter().Remaining())
}

func TestConnector_FetchReadme(t *testing.T) {
	c, _, refs := newTestConnector(t)

	raw, err := c.Fetch(context.Background(), "github:golang/go")
	require.NoError(t, err)
	assert.Equal(t, "README.md", raw.Name)
	assert.Equal(t, "# Go", string(raw.Content))
	assert.Equal(t, []string{""}, *refs)
}

func TestConnector_FetchErrors(t *testing.T) {
	c, _, _ := newTestConnector(t)

	t.Run("not found", func(t *testing.T) {
		_, err := c.Fetch(context.Background(), "github:golang/go/missing.md")
		assert.ErrorIs(t, err, domain.ErrFetch)
		assert.True(t, IsNotFound(err))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := c.Fetch(context.Background(), "github:golang/go/doc")
		assert.ErrorIs(t, err, domain.ErrFetch)
		assert.ErrorIs(t, err, ErrNotAFile)
	})

	t.Run("invalid source", func(t *testing.T) {
		_, err := c.Fetch(context.Background(), "github:golang")
		assert.ErrorIs(t, err, domain.ErrFetch)
		assert.ErrorIs(t, err, ErrInvalidSource)
	})
}

func newErrorConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient("").WithBaseURL(srv.URL)
	require.NoError(t, err)
	return New(client)
}

func TestConnector_FetchRateLimited(t *testing.T) {
	reset := time.Now().Add(time.Hour).Unix()
	c := newErrorConnector(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderRateRemaining, "0")
		w.Header().Set(HeaderRateLimit, "60")
		w.Header().Set(HeaderRateReset, strconv.FormatInt(reset, 10))
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"API rate limit exceeded for 127.0.0.1."}`))
	})

	_, err := c.Fetch(context.Background(), "github:golang/go/README.md")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.True(t, IsRateLimited(err))

	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, reset, rateErr.ResetAt.Unix())
}

func TestConnector_FetchUnauthorized(t *testing.T) {
	c := newErrorConnector(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
	})

	_, err := c.Fetch(context.Background(), "github:golang/go/README.md")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.NotErrorIs(t, err, domain.ErrRateLimited)
	assert.True(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		in      string
		want    Source
		wantErr bool
	}{
		{in: "github:o/r", want: Source{Owner: "o", Repo: "r"}},
		{in: "github:o/r/docs/a.md", want: Source{Owner: "o", Repo: "r", Path: "docs/a.md"}},
		{in: "github:o/r/docs/a.md@v1.2", want: Source{Owner: "o", Repo: "r", Path: "docs/a.md", Ref: "v1.2"}},
		{in: "github:o/r@main", want: Source{Owner: "o", Repo: "r", Ref: "main"}},
		{in: "  github:o/r/dir/ ", want: Source{Owner: "o", Repo: "r", Path: "dir"}},
		{in: "github:o", wantErr: true},
		{in: "github:/r", wantErr: true},
		{in: "github:o/r@", wantErr: true},
		{in: "https://github.com/o/r", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSource(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSource)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSource_Format(t *testing.T) {
	src := Source{Owner: "o", Repo: "r", Path: "docs/a.md", Ref: "v1"}
	assert.Equal(t, "github:o/r/docs/a.md@v1", src.String())
	assert.Equal(t, "https://github.com/o/r/blob/v1/docs/a.md", src.HTMLURL())

	bare := Source{Owner: "o", Repo: "r"}
	assert.Equal(t, "github:o/r", bare.String())
	assert.Equal(t, "https://github.com/o/r", bare.HTMLURL())
}

func TestRateLimiter_UpdateFromResponse(t *testing.T) {
	r := NewRateLimiter(AnonymousLimit)
	assert.Equal(t, AnonymousLimit, r.Remaining())

	reset := time.Now().Add(time.Minute).Unix()
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateRemaining, "12")
	resp.Header.Set(HeaderRateLimit, "60")
	resp.Header.Set(HeaderRateReset, strconv.FormatInt(reset, 10))
	r.UpdateFromResponse(resp)

	assert.Equal(t, 12, r.Remaining())
	assert.Equal(t, 60, r.Limit())
	assert.Equal(t, reset, r.ResetTime().Unix())

	r.UpdateFromResponse(nil)
	assert.Equal(t, 12, r.Remaining())
}
