package docs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch_SendsQueryAndAuth(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody searchRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(searchResponse{Results: []Snippet{
			{Text: "entity vars are defined in var_groups", Score: 0.92},
			{Text: "inputs declare source tables", Score: 0.71},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-123")
	snippets, err := c.Search(context.Background(), "entity vars", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if gotPath != "/search" {
		t.Errorf("path = %s, want /search", gotPath)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("auth = %q, want bearer token", gotAuth)
	}
	if gotBody.Query != "entity vars" || gotBody.K != 2 {
		t.Errorf("request body = %+v", gotBody)
	}
	if len(snippets) != 2 || snippets[0].Score != 0.92 {
		t.Errorf("snippets = %+v", snippets)
	}
}

func TestSearch_NoTokenNoAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.Search(context.Background(), "q", 1); err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("auth header = %q, want none", gotAuth)
	}
}

func TestSearch_ServerErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.Search(context.Background(), "q", 1); err == nil {
		t.Fatal("no error for 502 response")
	}
}
