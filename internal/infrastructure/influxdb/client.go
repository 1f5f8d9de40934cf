package influxdb

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/wardrive-core/internal/infrastructure/config"
	"github.com/nerrad567/wardrive-core/internal/infrastructure/logging"
)

const (
	pingTimeout = 5 * time.Second

	fallbackBatchSize     = 500
	fallbackFlushInterval = 5 * time.Second
)

// Client queues observation points for the configured bucket.
//
// Points are batched by the library and sent in the background. A batch the
// server refuses is logged and counted; it does not fail the conversion that
// produced it.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	logger   *logging.Logger

	mu     sync.RWMutex
	closed bool

	rejected atomic.Int64
}

// Connect pings the server at cfg.URL and returns a client writing to
// cfg.Org/cfg.Bucket. A nil logger means logging.Default().
func Connect(cfg config.InfluxDBConfig, logger *logging.Logger) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, writeOptions(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 2*pingTimeout)
	defer cancel()
	if err := ping(ctx, client); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, cfg.URL, err)
	}

	return newClient(client, cfg, logger), nil
}

// writeOptions maps batch_size and flush_interval (seconds) onto the
// library's batching options, falling back for non-positive values.
func writeOptions(cfg config.InfluxDBConfig) *influxdb2.Options {
	batch := uint(fallbackBatchSize)
	if cfg.BatchSize > 0 {
		batch = uint(cfg.BatchSize)
	}
	flush := fallbackFlushInterval
	if cfg.FlushInterval > 0 {
		flush = time.Duration(cfg.FlushInterval) * time.Second
	}
	// #nosec G115 -- flush is positive and well below MaxUint
	return influxdb2.DefaultOptions().
		SetBatchSize(batch).
		SetFlushInterval(uint(flush.Milliseconds()))
}

func ping(ctx context.Context, client influxdb2.Client) error {
	healthy, err := client.Ping(ctx)
	if err != nil {
		return err
	}
	if !healthy {
		return fmt.Errorf("server not healthy")
	}
	return nil
}

func newClient(client influxdb2.Client, cfg config.InfluxDBConfig, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		logger:   logger.With("component", "influxdb", "bucket", cfg.Bucket),
	}
	go c.drainErrors(c.writeAPI.Errors())
	return c
}

// drainErrors must keep reading: the write API blocks once its error
// channel fills up.
func (c *Client) drainErrors(errs <-chan error) {
	for err := range errs {
		n := c.rejected.Add(1)
		c.logger.Error("observation batch rejected", "error", fmt.Errorf("%w: %w", ErrWriteFailed, err), "rejected_batches", n)
	}
}

// RejectedBatches is the number of batches the server refused so far.
func (c *Client) RejectedBatches() int64 {
	return c.rejected.Load()
}

// Close sends the pending points and releases the client. Later calls are
// no-ops.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.writeAPI.Flush()
	c.client.Close()
	return nil
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := ping(ctx, c.client); err != nil {
		return fmt.Errorf("influxdb health check: %w", err)
	}
	return nil
}

// IsConnected reports whether the client is open. Use HealthCheck to reach
// the server.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client != nil && !c.closed
}

// Flush blocks until the queued points are sent.
func (c *Client) Flush() {
	if c.IsConnected() {
		c.writeAPI.Flush()
	}
}
