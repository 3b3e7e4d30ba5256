package authz

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewAPIClient(testAuthzConfig("x"))

	_, err := c.FetchOrganizations(context.Background(), srv.URL, "the-token")
	require.NoError(t, err)
	assert.Equal(t, "Bearer the-token", gotAuth)
}

func TestAPIClient_SingleAttempt(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewAPIClient(testAuthzConfig("x"))

	_, err := c.FetchOrganizations(context.Background(), srv.URL, "token")
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Equal(t, 1, attempts)
}

func TestAPIClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		status  int
		wantErr error
	}{
		{http.StatusUnauthorized, ErrUpstreamAuth},
		{http.StatusForbidden, ErrUpstreamAuth},
		{http.StatusNotFound, ErrUpstreamUnavailable},
		{http.StatusInternalServerError, ErrUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			srv := orgServer(t, tt.status, ``)
			defer srv.Close()

			c := NewAPIClient(testAuthzConfig("x"))

			_, err := c.FetchOrganizations(context.Background(), srv.URL, "token")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAPIClient_ContextCancellation(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewAPIClient(testAuthzConfig("x"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := c.FetchOrganizations(ctx, srv.URL, "token")
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestAPIClient_Pagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", `<`+srv.URL+`/orgs?page=2>; rel="next"`)
			w.Write([]byte(`[{"login":"first"}]`))
		case "2":
			w.Write([]byte(`[{"login":"second"}]`))
		}
	}))
	defer srv.Close()

	t.Run("disabled reads first page only", func(t *testing.T) {
		cfg := testAuthzConfig("x")
		c := NewAPIClient(cfg)

		orgs, err := c.FetchOrganizations(context.Background(), srv.URL+"/orgs", "token")
		require.NoError(t, err)
		assert.Equal(t, []Organization{{Login: "first"}}, orgs)
	})

	t.Run("enabled follows next links", func(t *testing.T) {
		cfg := testAuthzConfig("x")
		cfg.Paginate = true
		c := NewAPIClient(cfg)

		orgs, err := c.FetchOrganizations(context.Background(), srv.URL+"/orgs", "token")
		require.NoError(t, err)
		assert.Equal(t, []Organization{{Login: "first"}, {Login: "second"}}, orgs)
	})

	t.Run("page cap stops a link loop", func(t *testing.T) {
		var loop *httptest.Server
		loop = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Link", `<`+loop.URL+`/orgs>; rel="next"`)
			w.Write([]byte(`[{"login":"loop"}]`))
		}))
		defer loop.Close()

		cfg := testAuthzConfig("x")
		cfg.Paginate = true
		cfg.MaxPages = 3
		c := NewAPIClient(cfg)

		orgs, err := c.FetchOrganizations(context.Background(), loop.URL+"/orgs", "token")
		require.NoError(t, err)
		assert.Len(t, orgs, 3)
	})
}

func TestNextPageURL(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{
			name: "next present",
			link: `<https://api.github.com/user/orgs?page=2>; rel="next", <https://api.github.com/user/orgs?page=5>; rel="last"`,
			want: "https://api.github.com/user/orgs?page=2",
		},
		{
			name: "only prev and last",
			link: `<https://api.github.com/user/orgs?page=1>; rel="prev", <https://api.github.com/user/orgs?page=5>; rel="last"`,
			want: "",
		},
		{
			name: "no link header",
			link: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.link != "" {
				header.Set("Link", tt.link)
			}
			assert.Equal(t, tt.want, nextPageURL(header))
		})
	}
}
