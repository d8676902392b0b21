package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgate/internal/lead/store/memory"
	"leadgate/internal/platform/config"
	"leadgate/pkg/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		HTTPAddr:          ":0",
		StoreDriver:       config.DriverMemory,
		TrustedIPHeader:   "CF-Connecting-IP",
		RateLimitMaxPerIP: 5,
		NotifyTimeout:     time.Second,
		ShutdownTimeout:   time.Second,
		TelegramAPIBase:   "http://127.0.0.1:1",
		KafkaTopic:        "leads.accepted",
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// trackedOpener returns an opener whose backing counts how often it was closed.
func trackedOpener(b *backing, closed *atomic.Int32) storeOpener {
	b.closers = append(b.closers, func(context.Context) error {
		closed.Add(1)
		return nil
	})
	return func(context.Context, *config.Config, *slog.Logger) (*backing, error) {
		return b, nil
	}
}

func TestAssemble(t *testing.T) {
	t.Run("service construction failure closes opened clients", func(t *testing.T) {
		var closed atomic.Int32
		open := trackedOpener(&backing{store: nil}, &closed)

		a, err := assemble(context.Background(), testConfig(), discardLogger(), open, prometheus.NewRegistry())

		require.Error(t, err)
		assert.Nil(t, a)
		assert.Equal(t, int32(1), closed.Load())
	})

	t.Run("sink construction failure closes opened clients", func(t *testing.T) {
		var closed atomic.Int32
		open := trackedOpener(&backing{store: memory.New()}, &closed)
		cfg := testConfig()
		cfg.KafkaBrokers = "127.0.0.1:9092"
		cfg.KafkaTopic = ""

		_, err := assemble(context.Background(), cfg, discardLogger(), open, prometheus.NewRegistry())

		require.Error(t, err)
		assert.Equal(t, int32(1), closed.Load())
	})

	t.Run("success keeps clients open for shutdown", func(t *testing.T) {
		var closed atomic.Int32
		open := trackedOpener(&backing{store: memory.New()}, &closed)
		cfg := testConfig()
		cfg.MetricsEnabled = true

		a, err := assemble(context.Background(), cfg, discardLogger(), open, prometheus.NewRegistry())
		require.NoError(t, err)
		t.Cleanup(func() { _ = a.dispatcher.Close(context.Background()) })

		assert.Zero(t, closed.Load())
		assert.Len(t, a.closers, 1)
		assert.Equal(t, 1, a.sinks)

		rr := testutil.DoRequest(a.handler, testutil.NewJSONRequest(t, http.MethodGet, "/healthz", nil))
		testutil.AssertStatus(t, rr, http.StatusOK)

		closeAll(context.Background(), discardLogger(), a.closers)
		assert.Equal(t, int32(1), closed.Load())
	})
}
