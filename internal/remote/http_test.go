package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/object"
)

func TestList_PaginationAndScriptDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/workspace/7/function" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("auth header = %q", got)
		}
		page := r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		if page == "1" {
			_, _ = w.Write([]byte(`{
				"items": [
					{"id": 1, "name": "plain", "xanoscript": "function plain {}"},
					{"id": 2, "name": "wrapped", "xanoscript": {"status": "ok", "value": "function wrapped {}"}},
					{"id": 3, "name": "empty", "xanoscript": null}
				],
				"curPage": 1, "nextPage": 2
			}`))
			return
		}
		_, _ = w.Write([]byte(`{"items": [{"id": 4, "name": "last", "xanoscript": "function last {}"}], "curPage": 2, "nextPage": null}`))
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, 7, "", "tok")
	ctx := context.Background()

	objs, more, err := c.List(ctx, object.TypeFunction, 1, 1000, Options{})
	if err != nil {
		t.Fatalf("List page 1: %v", err)
	}
	if !more {
		t.Error("page 1 should report more pages")
	}
	if len(objs) != 3 {
		t.Fatalf("len = %d, want 3", len(objs))
	}
	if objs[0].Script != "function plain {}" || !objs[0].HasScript {
		t.Errorf("plain script = %+v", objs[0])
	}
	if objs[1].Script != "function wrapped {}" || !objs[1].HasScript {
		t.Errorf("wrapped script = %+v", objs[1])
	}
	if objs[2].HasScript {
		t.Errorf("null script should have HasScript=false: %+v", objs[2])
	}

	objs, more, err = c.List(ctx, object.TypeFunction, 2, 1000, Options{})
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if more {
		t.Error("last page should not report more")
	}
	if len(objs) != 1 || objs[0].ID != 4 {
		t.Errorf("page 2 objs = %+v", objs)
	}
}

func TestEndpointResourceRequiresGroup(t *testing.T) {
	c := NewHTTP("http://unused", 1, "", "")
	if _, _, err := c.List(context.Background(), object.TypeAPIEndpoint, 1, 10, Options{}); err == nil {
		t.Fatal("expected error listing endpoints without group id")
	}
}

func TestCreateReturnsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/workspace/7/apigroup/3/api" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["xanoscript"] != "query login {}" {
			t.Errorf("body = %v", body)
		}
		_, _ = w.Write([]byte(`{"id": 42}`))
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, 7, "", "")
	id, err := c.Create(context.Background(), object.TypeAPIEndpoint, "query login {}", Options{GroupID: 3})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 42 {
		t.Errorf("id = %d, want 42", id)
	}
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		status   int
		body     string
		sentinel error
	}{
		{http.StatusNotFound, `{"message": "no such object"}`, apperr.ErrNotFound},
		{http.StatusConflict, `{"message": "conflict"}`, apperr.ErrConflict},
		{http.StatusBadRequest, `{"message": "name already in use"}`, apperr.ErrConflict},
		{http.StatusBadRequest, `{"message": "invalid script"}`, nil},
	}
	for _, c := range cases {
		status, body := c.status, c.body
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		client := NewHTTP(srv.URL, 1, "", "")
		err := client.Update(context.Background(), object.TypeFunction, 1, "x", Options{})
		srv.Close()
		if err == nil {
			t.Fatalf("status %d: expected error", status)
		}
		if c.sentinel != nil && !errors.Is(err, c.sentinel) {
			t.Errorf("status %d %q: error %v should unwrap to %v", status, body, err, c.sentinel)
		}
		if c.sentinel == nil && (errors.Is(err, apperr.ErrConflict) || errors.Is(err, apperr.ErrNotFound)) {
			t.Errorf("status %d %q: unexpected sentinel in %v", status, body, err)
		}
	}
}

func TestErrorMessageSurfacedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message": "line 3: unexpected token"}`))
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, 1, "", "")
	err := c.Update(context.Background(), object.TypeFunction, 1, "x", Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %T is not *APIError", err)
	}
	if apiErr.Message != "line 3: unexpected token" {
		t.Errorf("message = %q", apiErr.Message)
	}
}
