package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/vip-mudancas/vip-cli/internal/api"
	"github.com/vip-mudancas/vip-cli/internal/storage"
)

// fakeBackend answers the auth endpoints with canned responses and counts calls.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	loginStatus  int
	loginBody    any
	meStatus     int
	meBody       any
	logoutStatus int

	// onLogin runs inside the login handler before the response is written.
	onLogin func()
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeBackend) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (f *fakeBackend) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.hit("login")
		if f.onLogin != nil {
			f.onLogin()
		}
		writeJSON(w, f.loginStatus, f.loginBody)
	}).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		f.hit("me")
		writeJSON(w, f.meStatus, f.meBody)
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.hit("logout")
		writeJSON(w, f.logoutStatus, map[string]string{"message": "Logout realizado com sucesso"})
	}).Methods(http.MethodPost)
	r.HandleFunc("/api/clientes", func(w http.ResponseWriter, r *http.Request) {
		f.hit("clientes")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Token inválido"})
	}).Methods(http.MethodGet)
	return r
}

type harness struct {
	store   *Store
	mem     *storage.MemoryStore
	client  *api.Client
	backend *fakeBackend
	expired []ExpiredEvent
}

func okBackend() *fakeBackend {
	return &fakeBackend{
		calls:        map[string]int{},
		loginStatus:  http.StatusOK,
		loginBody:    map[string]any{"message": "Login realizado com sucesso", "access_token": "t1", "user": map[string]any{"id": 1, "name": "A"}},
		meStatus:     http.StatusOK,
		meBody:       map[string]any{"user": map[string]any{"id": 1, "name": "A", "role": "admin"}},
		logoutStatus: http.StatusOK,
	}
}

func newHarness(t *testing.T, fb *fakeBackend) *harness {
	t.Helper()
	srv := httptest.NewServer(fb.router())
	t.Cleanup(srv.Close)

	mem := storage.NewMemoryStore()
	client := api.NewClient(srv.URL+"/api", api.WithTokenSource(storage.NewTokenSource(mem)))
	s := NewStore(client, mem)
	client.OnAuthFailure(s.HandleAuthFailure)

	h := &harness{store: s, mem: mem, client: client, backend: fb}
	s.OnExpired(func(ctx context.Context, ev ExpiredEvent) { h.expired = append(h.expired, ev) })
	return h
}

func (h *harness) persist(t *testing.T, token string, user api.User) {
	t.Helper()
	raw, err := json.Marshal(user)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.mem.SetMany(context.Background(), map[string]string{storage.KeyToken: token, storage.KeyUser: string(raw)}); err != nil {
		t.Fatal(err)
	}
}

func persistedUser(t *testing.T, s storage.Store) api.User {
	t.Helper()
	raw, err := s.Get(context.Background(), storage.KeyUser)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		t.Fatal(err)
	}
	var u api.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatal(err)
	}
	return u
}

func assertEmpty(t *testing.T, h *harness) {
	t.Helper()
	if h.mem.Len() != 0 {
		t.Errorf("storage holds %d keys, want none", h.mem.Len())
	}
	snap := h.store.Snapshot()
	if snap.Token != "" || snap.User != nil || h.store.IsAuthenticated() {
		t.Errorf("session = %+v, want empty", snap)
	}
}

func TestStore_LoginScenario(t *testing.T) {
	h := newHarness(t, okBackend())
	ctx := context.Background()
	h.store.Initialize(ctx)

	if err := h.store.Login(ctx, "12345678900", "secret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if !h.store.IsAuthenticated() {
		t.Error("IsAuthenticated() = false after login")
	}
	token, err := h.mem.Get(ctx, storage.KeyToken)
	if err != nil || token != "t1" {
		t.Errorf("persisted token = %q, %v; want t1", token, err)
	}
	if u := persistedUser(t, h.mem); u.ID() != "1" || u.Name() != "A" {
		t.Errorf("persisted user = %v", u)
	}
	if h.store.Token() != "t1" || h.store.User().Name() != "A" {
		t.Errorf("memory = %+v", h.store.Snapshot())
	}
}

func TestStore_LoginThenLogoutEndsEmpty(t *testing.T) {
	tests := []struct {
		name         string
		logoutStatus int
	}{
		{name: "backend acknowledges", logoutStatus: http.StatusOK},
		{name: "backend fails", logoutStatus: http.StatusInternalServerError},
		{name: "token already expired", logoutStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := okBackend()
			fb.logoutStatus = tt.logoutStatus
			h := newHarness(t, fb)
			ctx := context.Background()
			h.store.Initialize(ctx)

			for i := 0; i < 2; i++ {
				if err := h.store.Login(ctx, "12345678900", "secret"); err != nil {
					t.Fatalf("Login() error = %v", err)
				}
				if err := h.store.Logout(ctx); err != nil {
					t.Fatalf("Logout() error = %v", err)
				}
				assertEmpty(t, h)
			}
			if got := fb.count("logout"); got != 2 {
				t.Errorf("logout notifications = %d, want 2", got)
			}
			if len(h.expired) != 0 {
				t.Errorf("explicit logout raised %d expiry events, want 0", len(h.expired))
			}
		})
	}
}

func TestStore_IsAuthenticated(t *testing.T) {
	user := api.User{"id": "u1"}
	tests := []struct {
		name    string
		token   string
		user    api.User
		want    bool
		persist bool
	}{
		{name: "token and user", token: "t1", user: user, want: true, persist: true},
		{name: "token without user", token: "t1", persist: true},
		{name: "user without token", user: user, persist: true},
		{name: "empty user object", token: "t1", user: api.User{}, persist: true},
		{name: "nothing", persist: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, okBackend())
			ctx := context.Background()
			if tt.persist {
				if tt.token != "" {
					_ = h.mem.Set(ctx, storage.KeyToken, tt.token)
				}
				if tt.user != nil {
					raw, _ := json.Marshal(tt.user)
					_ = h.mem.Set(ctx, storage.KeyUser, string(raw))
				}
			}

			if h.store.IsAuthenticated() {
				t.Error("IsAuthenticated() = true before Initialize")
			}
			if !h.store.Loading() {
				t.Error("Loading() = false before Initialize")
			}

			h.store.Initialize(ctx)

			if got := h.store.IsAuthenticated(); got != tt.want {
				t.Errorf("IsAuthenticated() = %v, want %v", got, tt.want)
			}
			if h.store.Loading() {
				t.Error("Loading() = true after Initialize")
			}
			if n := h.backend.total(); n != 0 {
				t.Errorf("Initialize made %d backend calls, want 0", n)
			}
		})
	}
}

func TestStore_InitializeRunsOnce(t *testing.T) {
	h := newHarness(t, okBackend())
	ctx := context.Background()

	h.store.Initialize(ctx)
	h.persist(t, "t1", api.User{"id": "u1"})
	h.store.Initialize(ctx)

	if h.store.IsAuthenticated() {
		t.Error("second Initialize hydrated the session")
	}
}

func TestStore_InitializeIgnoresCorruptUser(t *testing.T) {
	h := newHarness(t, okBackend())
	ctx := context.Background()
	_ = h.mem.SetMany(ctx, map[string]string{storage.KeyToken: "t1", storage.KeyUser: "{not json"})

	h.store.Initialize(ctx)

	if h.store.IsAuthenticated() || h.store.Loading() {
		t.Errorf("session = %+v, want logged out and loaded", h.store.Snapshot())
	}
}

func TestStore_LoginRejectedLeavesPriorSession(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        any
		wantMessage string
	}{
		{name: "rejected credentials", status: http.StatusUnauthorized, body: map[string]string{"error": "Credenciais inválidas"}, wantMessage: "Credenciais inválidas"},
		{name: "validation message", status: http.StatusBadRequest, body: map[string]string{"message": "CPF obrigatório"}, wantMessage: "CPF obrigatório"},
		{name: "no payload", status: http.StatusInternalServerError, wantMessage: DefaultLoginMessage},
		{name: "missing token", status: http.StatusOK, body: map[string]any{"user": map[string]any{"id": "u2"}}, wantMessage: DefaultLoginMessage},
		{name: "missing user", status: http.StatusOK, body: map[string]any{"access_token": "t2"}, wantMessage: DefaultLoginMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := okBackend()
			fb.loginStatus = tt.status
			fb.loginBody = tt.body
			h := newHarness(t, fb)
			ctx := context.Background()

			prior := api.User{"id": "u1", "name": "Prior"}
			h.persist(t, "t0", prior)
			h.store.Initialize(ctx)
			before := h.store.Snapshot()

			err := h.store.Login(ctx, "12345678900", "wrong")

			var loginErr *LoginError
			if !errors.As(err, &loginErr) {
				t.Fatalf("Login() error = %v, want *LoginError", err)
			}
			if loginErr.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", loginErr.Message, tt.wantMessage)
			}
			if after := h.store.Snapshot(); !reflect.DeepEqual(after, before) {
				t.Errorf("session changed: %+v -> %+v", before, after)
			}
			if token, _ := h.mem.Get(ctx, storage.KeyToken); token != "t0" {
				t.Errorf("persisted token = %q, want t0", token)
			}
			if u := persistedUser(t, h.mem); !reflect.DeepEqual(u, prior) {
				t.Errorf("persisted user = %v, want %v", u, prior)
			}
			if len(h.expired) != 0 {
				t.Errorf("rejected login fired %d expiry events", len(h.expired))
			}
		})
	}
}

func TestStore_LoginDoesNotMutateBeforeResponse(t *testing.T) {
	fb := okBackend()
	h := newHarness(t, fb)
	var keysDuringRequest int
	var authDuringRequest bool
	fb.onLogin = func() {
		keysDuringRequest = h.mem.Len()
		authDuringRequest = h.store.IsAuthenticated()
	}
	ctx := context.Background()
	h.store.Initialize(ctx)

	if err := h.store.Login(ctx, "12345678900", "secret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if keysDuringRequest != 0 || authDuringRequest {
		t.Errorf("state mutated before response: keys=%d authenticated=%v", keysDuringRequest, authDuringRequest)
	}
	if h.mem.Len() != 2 {
		t.Errorf("storage holds %d keys after login, want token and user", h.mem.Len())
	}
}

// failingStore refuses every write.
type failingStore struct {
	*storage.MemoryStore
}

func (failingStore) Set(ctx context.Context, key, value string) error {
	return errors.New("disk full")
}

func (failingStore) SetMany(ctx context.Context, values map[string]string) error {
	return errors.New("disk full")
}

func TestStore_LoginPersistFailure(t *testing.T) {
	srv := httptest.NewServer(okBackend().router())
	t.Cleanup(srv.Close)

	st := failingStore{storage.NewMemoryStore()}
	s := NewStore(api.NewClient(srv.URL+"/api"), st)
	ctx := context.Background()
	s.Initialize(ctx)

	err := s.Login(ctx, "12345678900", "secret")
	var loginErr *LoginError
	if !errors.As(err, &loginErr) || loginErr.Message != DefaultLoginMessage {
		t.Fatalf("Login() error = %v, want default LoginError", err)
	}
	if s.IsAuthenticated() {
		t.Error("memory updated although storage write failed")
	}
}

func TestStore_LogoutWithoutSession(t *testing.T) {
	h := newHarness(t, okBackend())
	ctx := context.Background()
	h.store.Initialize(ctx)
	_ = h.mem.Set(ctx, storage.KeyUser, `{"id":"leftover"}`)

	if err := h.store.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if n := h.backend.total(); n != 0 {
		t.Errorf("Logout() made %d backend calls, want 0", n)
	}
	assertEmpty(t, h)
}

func TestStore_CorruptSessionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	corrupt := func() {
		t.Helper()
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	corrupt()

	fb := okBackend()
	srv := httptest.NewServer(fb.router())
	t.Cleanup(srv.Close)
	files := storage.NewFileStore(path)
	client := api.NewClient(srv.URL+"/api", api.WithTokenSource(storage.NewTokenSource(files)))
	s := NewStore(client, files)
	client.OnAuthFailure(s.HandleAuthFailure)
	ctx := context.Background()

	s.Initialize(ctx)
	if s.IsAuthenticated() {
		t.Fatal("corrupt file hydrated a session")
	}

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("corrupt file survived logout: %v", err)
	}

	corrupt()
	if err := s.Login(ctx, "12345678900", "secret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !s.IsAuthenticated() {
		t.Error("IsAuthenticated() = false after login")
	}
	if token, err := files.Get(ctx, storage.KeyToken); err != nil || token != "t1" {
		t.Errorf("persisted token = %q, %v; want t1", token, err)
	}
}

func TestStore_GetCurrentUserWithoutToken(t *testing.T) {
	h := newHarness(t, okBackend())
	ctx := context.Background()
	h.store.Initialize(ctx)

	if u := h.store.GetCurrentUser(ctx); u != nil {
		t.Errorf("GetCurrentUser() = %v, want nil", u)
	}
	if n := h.backend.total(); n != 0 {
		t.Errorf("GetCurrentUser() made %d backend calls, want 0", n)
	}
}

func TestStore_GetCurrentUser(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       any
		wantUser   bool
		wantEmpty  bool
		wantExpiry int
	}{
		{name: "refreshes profile", status: http.StatusOK, body: map[string]any{"user": map[string]any{"id": 1, "name": "A", "role": "admin"}}, wantUser: true},
		{name: "server error keeps session", status: http.StatusInternalServerError, body: map[string]string{"error": "boom"}},
		{name: "response without user keeps session", status: http.StatusOK, body: map[string]any{}},
		{name: "401 logs out", status: http.StatusUnauthorized, body: map[string]string{"error": "Token expirado"}, wantEmpty: true, wantExpiry: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := okBackend()
			fb.meStatus = tt.status
			fb.meBody = tt.body
			h := newHarness(t, fb)
			ctx := context.Background()

			prior := api.User{"id": float64(1), "name": "A"}
			h.persist(t, "t1", prior)
			h.store.Initialize(ctx)

			got := h.store.GetCurrentUser(ctx)

			if fb.count("me") != 1 {
				t.Errorf("me calls = %d, want 1", fb.count("me"))
			}
			if len(h.expired) != tt.wantExpiry {
				t.Errorf("expiry events = %d, want %d", len(h.expired), tt.wantExpiry)
			}
			switch {
			case tt.wantEmpty:
				if got != nil {
					t.Errorf("GetCurrentUser() = %v, want nil", got)
				}
				assertEmpty(t, h)
			case tt.wantUser:
				if got.Role() != "admin" {
					t.Errorf("GetCurrentUser() = %v", got)
				}
				if u := persistedUser(t, h.mem); u.Role() != "admin" {
					t.Errorf("persisted user = %v", u)
				}
				if h.store.User().Role() != "admin" || h.store.Token() != "t1" {
					t.Errorf("memory = %+v", h.store.Snapshot())
				}
			default:
				if got != nil {
					t.Errorf("GetCurrentUser() = %v, want nil", got)
				}
				if !reflect.DeepEqual(h.store.User(), prior) || !reflect.DeepEqual(persistedUser(t, h.mem), prior) {
					t.Errorf("profile changed: memory %v storage %v", h.store.User(), persistedUser(t, h.mem))
				}
			}
		})
	}
}

func TestStore_AnyAuthenticated401ClearsSession(t *testing.T) {
	h := newHarness(t, okBackend())
	ctx := context.Background()
	h.store.Initialize(ctx)
	if err := h.store.Login(ctx, "12345678900", "secret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	_, err := h.client.ListClientes(ctx, api.Page{})
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("ListClientes() error = %v, want ErrUnauthorized", err)
	}

	assertEmpty(t, h)
	if len(h.expired) != 1 {
		t.Fatalf("expiry events = %d, want 1", len(h.expired))
	}
	ev := h.expired[0]
	if ev.LoginRoute != DefaultLoginRoute || ev.Failure.Path != "/clientes" || ev.Failure.Token != "t1" {
		t.Errorf("event = %+v", ev)
	}
}

func TestStore_HandleAuthFailureIgnoresReplacedToken(t *testing.T) {
	h := newHarness(t, okBackend())
	ctx := context.Background()
	h.persist(t, "t2", api.User{"id": "u1"})
	h.store.Initialize(ctx)

	h.store.HandleAuthFailure(ctx, api.AuthFailure{Method: http.MethodGet, Path: "/clientes", Token: "t1"})

	if !h.store.IsAuthenticated() || h.mem.Len() != 2 {
		t.Errorf("session cleared by a 401 for an older token: %+v", h.store.Snapshot())
	}
	if len(h.expired) != 0 {
		t.Errorf("expiry events = %d, want 0", len(h.expired))
	}

	h.store.HandleAuthFailure(ctx, api.AuthFailure{Method: http.MethodGet, Path: "/clientes"})
	assertEmpty(t, h)
}

func TestStore_UpdateUser(t *testing.T) {
	h := newHarness(t, okBackend())
	ctx := context.Background()
	h.persist(t, "t1", api.User{"id": "u1", "name": "Old", "email": "old@vip.com"})
	h.store.Initialize(ctx)

	profile := api.User{"id": "u1", "name": "New"}
	if err := h.store.UpdateUser(ctx, profile); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	if u := persistedUser(t, h.mem); !reflect.DeepEqual(u, profile) {
		t.Errorf("persisted user = %v, want exactly %v", u, profile)
	}
	if token, _ := h.mem.Get(ctx, storage.KeyToken); token != "t1" {
		t.Errorf("persisted token = %q, want t1", token)
	}
	if h.store.Token() != "t1" || !reflect.DeepEqual(h.store.User(), profile) {
		t.Errorf("memory = %+v", h.store.Snapshot())
	}
	if n := h.backend.total(); n != 0 {
		t.Errorf("UpdateUser() made %d backend calls, want 0", n)
	}
}

func TestStore_Subscribe(t *testing.T) {
	h := newHarness(t, okBackend())
	ctx := context.Background()

	var got []Session
	unsubscribe := h.store.Subscribe(func(s Session) { got = append(got, s) })

	h.store.Initialize(ctx)
	if err := h.store.Login(ctx, "12345678900", "secret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	unsubscribe()
	if err := h.store.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("notifications = %d, want 2", len(got))
	}
	if got[0].Loading || got[0].IsAuthenticated() {
		t.Errorf("first snapshot = %+v", got[0])
	}
	if !got[1].IsAuthenticated() || got[1].Token != "t1" {
		t.Errorf("second snapshot = %+v", got[1])
	}
}

func TestStore_ConcurrentOperationsStayConsistent(t *testing.T) {
	h := newHarness(t, okBackend())
	ctx := context.Background()
	h.store.Initialize(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = h.store.Login(ctx, "12345678900", "secret")
			} else {
				_ = h.store.Logout(ctx)
			}
		}(i)
	}
	wg.Wait()

	token, err := h.mem.Get(ctx, storage.KeyToken)
	if errors.Is(err, storage.ErrNotFound) {
		token = ""
	}
	if token != h.store.Token() {
		t.Errorf("memory token %q differs from persisted %q", h.store.Token(), token)
	}
	if (persistedUser(t, h.mem) == nil) != (h.store.User() == nil) {
		t.Errorf("memory user %v differs from persisted %v", h.store.User(), persistedUser(t, h.mem))
	}
}
