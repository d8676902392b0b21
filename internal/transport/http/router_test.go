package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgate/internal/lead/handler"
	"leadgate/internal/lead/models"
	"leadgate/internal/lead/notify"
	"leadgate/internal/lead/service"
	"leadgate/internal/lead/store/memory"
	"leadgate/pkg/testutil"
)

type flakyNotifier struct {
	mu    sync.Mutex
	calls int
}

func (f *flakyNotifier) Notify(context.Context, *models.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return errors.New("telegram unreachable")
}

type countingStore struct {
	*memory.InMemoryStore
	mu     sync.Mutex
	counts int
}

func (c *countingStore) Count(ctx context.Context, ip string) (int, error) {
	c.mu.Lock()
	c.counts++
	c.mu.Unlock()
	return c.InMemoryStore.Count(ctx, ip)
}

type pipeline struct {
	router     http.Handler
	store      *countingStore
	notifier   *flakyNotifier
	dispatcher *notify.Dispatcher
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := &countingStore{InMemoryStore: memory.New()}
	notifier := &flakyNotifier{}
	dispatcher := notify.NewDispatcher(notifier, notify.WithLogger(logger))

	svc, err := service.New(store, service.WithLogger(logger), service.WithDispatcher(dispatcher))
	require.NoError(t, err)

	router := NewRouter(Config{
		Logger:          logger,
		TrustedIPHeader: "CF-Connecting-IP",
		Health:          store.Health,
		Modules:         []RouteRegistrar{handler.New(svc, logger, nil)},
	})
	return &pipeline{router: router, store: store, notifier: notifier, dispatcher: dispatcher}
}

func post(t *testing.T, router http.Handler, ip string, body any) int {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/", body)
	if ip != "" {
		req.Header.Set("CF-Connecting-IP", ip)
	}
	return testutil.DoRequest(router, req).Code
}

func TestLeadPipeline(t *testing.T) {
	testutil.Given(t, "a router backed by the in-memory store and a failing notifier", func(t *testing.T) {
		p := newPipeline(t)

		testutil.When(t, "a valid email lead is posted", func(t *testing.T) {
			code := post(t, p.router, "203.0.113.5", map[string]any{
				"name": "Ana", "company": "Acme", "team_size": "12", "contact": "ana@acme.com",
			})
			require.NoError(t, p.dispatcher.Close(context.Background()))

			testutil.Then(t, "it is accepted despite the notification failure", func(t *testing.T) {
				assert.Equal(t, http.StatusOK, code)
				assert.Equal(t, 1, p.notifier.calls)
			})

			testutil.And(t, "the stored record is normalized", func(t *testing.T) {
				records := p.store.Records()
				require.Len(t, records, 1)
				rec := records[0]
				require.NotNil(t, rec.Email)
				assert.Equal(t, "ana@acme.com", *rec.Email)
				assert.Nil(t, rec.Phone)
				assert.Equal(t, 12, rec.TeamSize)
				assert.Equal(t, "203.0.113.5", rec.IPAddress)
			})
		})
	})

	testutil.Given(t, "an IP that already has five stored leads", func(t *testing.T) {
		p := newPipeline(t)
		for range 5 {
			_, err := p.store.InMemoryStore.Insert(context.Background(), models.NormalizedSubmission{IPAddress: "203.0.113.5"})
			require.NoError(t, err)
		}

		testutil.When(t, "a sixth lead arrives from it", func(t *testing.T) {
			code := post(t, p.router, "203.0.113.5", map[string]any{
				"name": "Ana", "company": "Acme", "team_size": 12, "contact": "+34 600 123 456",
			})

			testutil.Then(t, "it is refused and not persisted", func(t *testing.T) {
				assert.Equal(t, http.StatusTooManyRequests, code)
				assert.Len(t, p.store.Records(), 5)
			})
		})

		testutil.When(t, "a lead arrives from another IP", func(t *testing.T) {
			code := post(t, p.router, "198.51.100.1", map[string]any{
				"name": "Bo", "company": "X", "team_size": "3", "contact": "bo@x.io",
			})

			testutil.Then(t, "it is accepted", func(t *testing.T) {
				assert.Equal(t, http.StatusOK, code)
			})
		})
	})

	testutil.Given(t, "requests without the trusted IP header", func(t *testing.T) {
		p := newPipeline(t)

		testutil.When(t, "they are posted", func(t *testing.T) {
			for range 5 {
				require.Equal(t, http.StatusOK, post(t, p.router, "", map[string]any{
					"name": "Cy", "company": "Y", "team_size": "3", "contact": "cy@y.io",
				}))
			}
			code := post(t, p.router, "", map[string]any{
				"name": "Cy", "company": "Y", "team_size": "3", "contact": "cy@y.io",
			})

			testutil.Then(t, "they share the fallback bucket", func(t *testing.T) {
				assert.Equal(t, http.StatusTooManyRequests, code)
				for _, rec := range p.store.Records() {
					assert.Equal(t, "0.0.0.0", rec.IPAddress)
				}
			})
		})
	})

	testutil.Given(t, "a malformed body", func(t *testing.T) {
		p := newPipeline(t)

		testutil.When(t, "it is posted", func(t *testing.T) {
			rr := testutil.DoRequest(p.router, testutil.NewRequestWithBody(t, http.MethodPost, "/", "not json"))

			testutil.Then(t, "the internal error response is returned without touching the store", func(t *testing.T) {
				assert.Equal(t, http.StatusInternalServerError, rr.Code)
				assert.Zero(t, p.store.counts)
				assert.Empty(t, p.store.Records())
			})
		})
	})

	testutil.Given(t, "an invalid lead", func(t *testing.T) {
		p := newPipeline(t)

		testutil.When(t, "it is posted", func(t *testing.T) {
			code := post(t, p.router, "203.0.113.5", map[string]any{
				"name": "Cy", "company": "Y", "team_size": "3", "contact": "not-a-contact",
			})

			testutil.Then(t, "it is rejected before the rate check", func(t *testing.T) {
				assert.Equal(t, http.StatusBadRequest, code)
				assert.Zero(t, p.store.counts)
			})
		})
	})
}

func TestHealthz(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		router := NewRouter(Config{Health: func(context.Context) error { return nil }})
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/healthz", nil))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "status", "ok")
	})

	t.Run("store down", func(t *testing.T) {
		router := NewRouter(Config{
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
			Health: func(context.Context) error { return errors.New("dial tcp: refused") },
		})
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/healthz", nil))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	router := NewRouter(Config{MetricsHandler: DefaultMetricsHandler()})
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/metrics", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)

	without := NewRouter(Config{})
	rr = testutil.DoRequest(without, testutil.NewJSONRequest(t, http.MethodGet, "/metrics", nil))
	assert.NotEqual(t, http.StatusOK, rr.Code)
}

func TestRequestIDEchoed(t *testing.T) {
	router := NewRouter(Config{Health: func(context.Context) error { return nil }})
	req := testutil.NewJSONRequest(t, http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "trace-1")

	rr := testutil.DoRequest(router, req)
	assert.Equal(t, "trace-1", rr.Header().Get("X-Request-ID"))
}

type panickingModule struct{}

func (panickingModule) Register(r chi.Router) {
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
}

func TestPanicResponseMatchesHandlerInternalError(t *testing.T) {
	router := NewRouter(Config{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Modules: []RouteRegistrar{panickingModule{}},
	})
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/boom", nil))

	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	testutil.AssertJSONContains(t, rr, "message", models.MsgInternal)
	testutil.AssertJSONContains(t, rr, "success", false)
}
