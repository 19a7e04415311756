package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type staticTokens struct {
	mu    sync.Mutex
	token string
	calls int
}

func (s *staticTokens) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.token, nil
}

func (s *staticTokens) set(t string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = t
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newBackend(t *testing.T, register func(r *mux.Router)) *httptest.Server {
	t.Helper()
	r := mux.NewRouter()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_AttachesTokenReadAtDispatch(t *testing.T) {
	var seen []string
	srv := newBackend(t, func(r *mux.Router) {
		r.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": "u1"}})
		}).Methods(http.MethodGet)
	})

	tokens := &staticTokens{}
	c := NewClient(srv.URL+"/api", WithTokenSource(tokens))
	ctx := context.Background()

	if _, err := c.Me(ctx); err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	tokens.set("t1")
	if _, err := c.Me(ctx); err != nil {
		t.Fatalf("Me() error = %v", err)
	}

	if len(seen) != 2 || seen[0] != "" || seen[1] != "Bearer t1" {
		t.Errorf("Authorization headers = %q, want [\"\" \"Bearer t1\"]", seen)
	}
	if tokens.calls != 2 {
		t.Errorf("token source read %d times, want once per request", tokens.calls)
	}
}

func TestClient_SetsRequestID(t *testing.T) {
	var id string
	srv := newBackend(t, func(r *mux.Router) {
		r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			id = r.Header.Get(RequestIDHeader)
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	if _, err := NewClient(srv.URL).Health(context.Background()); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("X-Request-ID %q is not a UUID: %v", id, err)
	}
}

func TestClient_EmitsAuthFailureOn401(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		call      func(c *Client) error
		wantEvent bool
	}{
		{
			name:      "401 on authenticated call",
			status:    http.StatusUnauthorized,
			call:      func(c *Client) error { _, err := c.Me(context.Background()); return err },
			wantEvent: true,
		},
		{
			name:      "403 is passed through",
			status:    http.StatusForbidden,
			call:      func(c *Client) error { _, err := c.Me(context.Background()); return err },
			wantEvent: false,
		},
		{
			name:      "401 on login is rejected credentials",
			status:    http.StatusUnauthorized,
			call:      func(c *Client) error { _, err := c.Login(context.Background(), "12345678900", "x"); return err },
			wantEvent: false,
		},
		{
			name:      "401 on logout notification",
			status:    http.StatusUnauthorized,
			call:      func(c *Client) error { _, err := c.Logout(context.Background()); return err },
			wantEvent: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newBackend(t, func(r *mux.Router) {
				r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					writeJSON(w, tt.status, map[string]string{"error": "nope"})
				})
			})

			c := NewClient(srv.URL, WithTokenSource(&staticTokens{token: "t1"}))
			var events []AuthFailure
			c.OnAuthFailure(func(ctx context.Context, f AuthFailure) { events = append(events, f) })

			err := tt.call(c)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := len(events) == 1; got != tt.wantEvent {
				t.Fatalf("events = %v, wantEvent %v", events, tt.wantEvent)
			}
			if tt.wantEvent {
				if events[0].Token != "t1" || events[0].Path != "/auth/me" || events[0].Method != http.MethodGet {
					t.Errorf("event = %+v", events[0])
				}
				if !errors.Is(err, ErrUnauthorized) {
					t.Errorf("error %v does not match ErrUnauthorized", err)
				}
			}
		})
	}
}

func TestClient_ErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		body        any
		status      int
		wantMessage string
		wantBackend bool
	}{
		{name: "error field", body: map[string]string{"error": "CPF inválido"}, status: 400, wantMessage: "CPF inválido", wantBackend: true},
		{name: "message field", body: map[string]string{"message": "gateway says no"}, status: 502, wantMessage: "gateway says no", wantBackend: true},
		{name: "no payload", body: nil, status: 500, wantMessage: "request failed with status 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newBackend(t, func(r *mux.Router) {
				r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					if tt.body == nil {
						w.WriteHeader(tt.status)
						return
					}
					writeJSON(w, tt.status, tt.body)
				})
			})

			err := NewClient(srv.URL).Get(context.Background(), "/x", nil)
			apiErr, ok := AsAPIError(err)
			if !ok {
				t.Fatalf("error %v is not an APIError", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Message != tt.wantMessage || apiErr.FromBackend != tt.wantBackend {
				t.Errorf("APIError = %+v", apiErr)
			}
		})
	}
}

func TestClient_NetworkErrorPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url)
	fired := false
	c.OnAuthFailure(func(ctx context.Context, f AuthFailure) { fired = true })

	err := c.Get(context.Background(), "/x", nil)
	if err == nil {
		t.Fatal("expected network error")
	}
	if _, ok := AsAPIError(err); ok {
		t.Errorf("network failure mapped to APIError: %v", err)
	}
	if fired {
		t.Error("auth failure emitted without a response")
	}
}

func TestClient_QueryParameters(t *testing.T) {
	var got map[string]string
	srv := newBackend(t, func(r *mux.Router) {
		r.HandleFunc("/orcamentos", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			got = map[string]string{"page": q.Get("page"), "per_page": q.Get("per_page"), "status": q.Get("status")}
			writeJSON(w, http.StatusOK, map[string]any{"orcamentos": []any{map[string]any{"_id": "o1"}}, "page": 2, "per_page": 5})
		}).Methods(http.MethodGet)
	})

	list, err := NewClient(srv.URL).ListOrcamentos(context.Background(), Page{Page: 2, PerPage: 5}, "pendente")
	if err != nil {
		t.Fatalf("ListOrcamentos() error = %v", err)
	}
	if got["page"] != "2" || got["per_page"] != "5" || got["status"] != "pendente" {
		t.Errorf("query = %v", got)
	}
	if len(list.Orcamentos) != 1 || list.Orcamentos[0].String("_id") != "o1" {
		t.Errorf("list = %+v", list)
	}
}

func TestPage_Defaults(t *testing.T) {
	q := Page{}.query()
	if q.Get("page") != "1" || q.Get("per_page") != "20" {
		t.Errorf("default page query = %v", q)
	}
}

func TestClient_RequestInterceptorError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", WithRequestInterceptor(func(req *http.Request) error {
		return errors.New("blocked")
	}))
	if err := c.Get(context.Background(), "/x", nil); err == nil {
		t.Fatal("expected interceptor error")
	}
}

func TestUser_String(t *testing.T) {
	u := User{"id": float64(1), "name": "A", "active": true}
	if u.ID() != "1" || u.Name() != "A" || u.String("active") != "true" || u.Email() != "" {
		t.Errorf("accessors = %q %q %q %q", u.ID(), u.Name(), u.String("active"), u.Email())
	}
}
