package adapter_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/libris/pkg/adapter"
)

func TestBiblioWebStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("parses the lending status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gt.Equal(t, r.Method, http.MethodPost)
			gt.Equal(t, r.URL.Path, "/medium/status/104")
			w.Write([]byte(`{"ausleihstatus": {"status": "verfügbar"}}`))
		}))
		defer srv.Close()

		client := adapter.NewBiblioWeb(srv.URL)
		gt.Equal(t, client.Status(ctx, 104), "verfügbar")
	})

	t.Run("non-200 degrades to unknown", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := adapter.NewBiblioWeb(srv.URL)
		gt.Equal(t, client.Status(ctx, 104), adapter.AvailabilityUnknown)
	})

	t.Run("malformed body degrades to unknown", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		client := adapter.NewBiblioWeb(srv.URL)
		gt.Equal(t, client.Status(ctx, 104), adapter.AvailabilityUnknown)
	})

	t.Run("missing status field degrades to unknown", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"ausleihstatus": {}}`))
		}))
		defer srv.Close()

		client := adapter.NewBiblioWeb(srv.URL)
		gt.Equal(t, client.Status(ctx, 104), adapter.AvailabilityUnknown)
	})

	t.Run("unreachable server degrades to unknown", func(t *testing.T) {
		client := adapter.NewBiblioWeb("http://127.0.0.1:1")
		gt.Equal(t, client.Status(ctx, 104), adapter.AvailabilityUnknown)
	})
}
