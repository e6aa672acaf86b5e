package clients

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"greendex/config"
	"greendex/models"
)

func newTestClient(baseURL string) *Client {
	cfg := &config.Config{
		ReposBaseURL:    baseURL,
		PackagesBaseURL: baseURL,
		CommitsBaseURL:  baseURL,
		IssuesBaseURL:   baseURL,
		TimelineBaseURL: baseURL,
		ArchivesBaseURL: baseURL,
		OpenAlexBaseURL: baseURL,
		JossBaseURL:     baseURL,
		UserAgent:       "greendex.test",
	}
	return New(cfg, zap.NewNop())
}

func TestFetchRepository(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		assert.Equal(t, "/api/v1/repositories/lookup", r.URL.Path)
		assert.Equal(t, "https://github.com/octocat/greentool", r.URL.Query().Get("url"))
		json.NewEncoder(w).Encode(models.RepositoryDoc{
			FullName: "octocat/greentool",
			Topics:   []string{"solar"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	doc, err := client.FetchRepository("https://github.com/octocat/greentool")
	require.NoError(t, err)
	assert.Equal(t, "octocat/greentool", doc.FullName)
	assert.Equal(t, []string{"solar"}, doc.Topics)
	assert.Equal(t, "greendex.test", gotUserAgent)
}

func TestFetchRepositoryNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchRepository("https://github.com/octocat/gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchRepositoryServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchRepository("https://github.com/octocat/greentool")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFetchOwnerEscapesPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/hosts/GitHub/owners/octocat", r.URL.Path)
		json.NewEncoder(w).Encode(models.OwnerDoc{Login: "octocat", Kind: "organization"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	doc, err := client.FetchOwner("GitHub", "octocat")
	require.NoError(t, err)
	assert.Equal(t, "organization", doc.Kind)
}

func TestResolveURLStripsQueryAndFragment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new?utm_source=newsletter", http.StatusMovedPermanently)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resolved, err := client.ResolveURL(server.URL + "/old")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/new", resolved)
}

func TestFetchIssueListPaginates(t *testing.T) {
	pages := map[string]int{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages[page]++
		n := 100
		if page == "2" {
			n = 3
		}
		docs := make([]models.IssueDoc, n)
		for i := range docs {
			docs[i] = models.IssueDoc{UUID: fmt.Sprintf("p%s-%d", page, i)}
		}
		json.NewEncoder(w).Encode(docs)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	docs, err := client.FetchIssueList(server.URL + "/repo")
	require.NoError(t, err)
	assert.Len(t, docs, 103)
	assert.Equal(t, map[string]int{"1": 1, "2": 1}, pages)
}

func TestLookupPackage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/packages/lookup", r.URL.Path)
		assert.Equal(t, "pypi", r.URL.Query().Get("ecosystem"))
		assert.Equal(t, "solarlib", r.URL.Query().Get("name"))
		json.NewEncoder(w).Encode([]models.PackageDoc{{Name: "solarlib", Ecosystem: "pypi"}})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	doc, err := client.LookupPackage("pypi", "solarlib")
	require.NoError(t, err)
	assert.Equal(t, "solarlib", doc.Name)
}

func TestLookupPackageEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.PackageDoc{})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.LookupPackage("pypi", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJossDOI(t *testing.T) {
	assert.Equal(t, "10.21105/joss.01234",
		JossDOI([]string{"10.1000/other", "10.21105/joss.01234"}))
	assert.Equal(t, "", JossDOI([]string{"10.1000/other"}))
}
