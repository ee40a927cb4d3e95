package locationIQ

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
		err    error
	}{
		{
			name:   "suburb and city",
			status: http.StatusOK,
			body:   `{"display_name":"MG Road, Bengaluru, India","address":{"suburb":"Shivajinagar","city":"Bengaluru"}}`,
			want:   "Shivajinagar, Bengaluru",
		},
		{
			name:   "town only",
			status: http.StatusOK,
			body:   `{"display_name":"x","address":{"town":"Hosur"}}`,
			want:   "Hosur",
		},
		{
			name:   "display name fallback",
			status: http.StatusOK,
			body:   `{"display_name":"Somewhere, Earth"}`,
			want:   "Somewhere, Earth",
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{"error":"Unable to geocode"}`,
			err:    ErrLocationNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/reverse" || r.URL.Query().Get("key") != "k" {
					t.Errorf("unexpected request %s", r.URL.String())
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New("k", srv.URL, time.Second)
			got, err := c.RouteLabel(context.Background(), 12.97, 77.59)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("err = %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRouteLabelServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := New("k", srv.URL, time.Second).RouteLabel(context.Background(), 1, 2); err == nil {
		t.Fatal("expected error")
	}
}
