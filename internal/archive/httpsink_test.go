package archive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debriefhq/debrief/internal/errs"
)

func TestHTTPSink_Store(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/documents", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var req struct {
			Title      string `json:"title"`
			EmployeeID string `json:"employeeId"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.EmployeeID)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"locationId":"doc-42","url":"https://docs.example.com/doc-42"}`))
	}))
	defer srv.Close()

	loc, err := NewHTTPSink(srv.URL, "tok").Store(context.Background(), testDoc("alice"))
	require.NoError(t, err)
	assert.Equal(t, "doc-42", loc.ID)
	assert.Equal(t, "https://docs.example.com/doc-42", loc.URL)
}

func TestHTTPSink_PermissionDenied(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(strconv.Itoa(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
			}))
			defer srv.Close()

			_, err := NewHTTPSink(srv.URL, "").Store(context.Background(), testDoc("alice"))
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrPermissionDenied)
			assert.Contains(t, err.Error(), errs.PermissionMessage)
			assert.NotContains(t, err.Error(), strconv.Itoa(status), "status codes never leak")
		})
	}
}

func TestHTTPSink_ErrorTaxonomy(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError} {
		t.Run(strconv.Itoa(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
			}))
			defer srv.Close()

			_, err := NewHTTPSink(srv.URL, "").Store(context.Background(), testDoc("alice"))
			assert.ErrorIs(t, err, errs.ErrAPI)
			assert.NotContains(t, err.Error(), strconv.Itoa(status))
		})
	}
}

func TestHTTPSink_Unreachable(t *testing.T) {
	_, err := NewHTTPSink("http://127.0.0.1:1", "").Store(context.Background(), testDoc("alice"))
	assert.ErrorIs(t, err, errs.ErrNetwork)
}

func TestHTTPSink_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"locationId":`))
	}))
	defer srv.Close()

	_, err := NewHTTPSink(srv.URL, "").Store(context.Background(), testDoc("alice"))
	assert.ErrorIs(t, err, errs.ErrAPI)
}
