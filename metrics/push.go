package metrics

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/prometheus/prompb"
)

const (
	// DefaultPushTimeout bounds each remote write request.
	DefaultPushTimeout = 5 * time.Second
	// DefaultPushQueueSize is the number of samples buffered ahead of the writer.
	DefaultPushQueueSize = 1024
)

// PushConfig configures a PushRegistry.
type PushConfig struct {
	// URL is the base URL of the remote write endpoint (e.g., "http://localhost:8428").
	URL string
	// Prefix is prepended to every metric name, followed by an underscore.
	Prefix string
	// Job and Instance are attached as labels to every sample, when set.
	Job      string
	Instance string
	// Timeout is the HTTP client timeout. Defaults to DefaultPushTimeout.
	Timeout time.Duration
	// QueueSize bounds the samples waiting to be written. Samples are dropped
	// when it is full. Defaults to DefaultPushQueueSize.
	QueueSize int
	// Logger receives push failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// PushRegistry implements Registry by sending every update to a Prometheus
// remote write endpoint. Updates are queued and written by a single
// background goroutine, so metric calls never wait on the network.
// Call Close to stop the writer.
type PushRegistry struct {
	pusher *pusher
}

// NewPushRegistry creates a PushRegistry for cfg.
func NewPushRegistry(cfg PushConfig) *PushRegistry {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultPushTimeout
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultPushQueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &pusher{
		url:        strings.TrimSuffix(cfg.URL, "/") + "/api/v1/write",
		httpClient: &http.Client{Timeout: timeout},
		prefix:     cfg.Prefix,
		job:        cfg.Job,
		instance:   cfg.Instance,
		timeout:    timeout,
		logger:     logger,
		queue:      make(chan sample, queueSize),
		ctx:        ctx,
		cancel:     cancel,
	}
	p.wg.Add(1)
	go p.run()

	return &PushRegistry{pusher: p}
}

// Close stops the background writer, abandoning any in-flight request and
// queued samples. Updates made after Close are dropped.
func (r *PushRegistry) Close() {
	r.pusher.cancel()
	r.pusher.wg.Wait()
}

func (r *PushRegistry) NewGauge(opts prometheus.GaugeOpts) (Gauge, error) {
	return &pushGauge{pusher: r.pusher, name: opts.Name}, nil
}

func (r *PushRegistry) NewGaugeVec(opts prometheus.GaugeOpts, labels []string) (GaugeVec, error) {
	return &pushGaugeVec{pusher: r.pusher, name: opts.Name}, nil
}

func (r *PushRegistry) NewCounter(opts prometheus.CounterOpts) (Counter, error) {
	return &pushCounter{pusher: r.pusher, name: opts.Name}, nil
}

func (r *PushRegistry) NewCounterVec(opts prometheus.CounterOpts, labels []string) (CounterVec, error) {
	return &pushCounterVec{pusher: r.pusher, name: opts.Name}, nil
}

// pusher handles remote write.
type pusher struct {
	url        string
	httpClient *http.Client
	prefix     string
	job        string
	instance   string
	timeout    time.Duration
	logger     *slog.Logger

	queue  chan sample
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type sample struct {
	name   string
	value  float64
	labels map[string]string
}

// send queues one sample for the writer. It never blocks.
func (p *pusher) send(name string, value float64, labels map[string]string) {
	if p.ctx.Err() != nil {
		return
	}
	select {
	case p.queue <- sample{name: name, value: value, labels: labels}:
	default:
		p.logger.Warn("metrics queue full, dropping sample", "metric", name)
	}
}

// run writes queued samples in order until the pusher is cancelled.
func (p *pusher) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case s := <-p.queue:
			if err := p.push(s.name, s.value, s.labels); err != nil && p.ctx.Err() == nil {
				p.logger.Warn("failed to push metric", "metric", s.name, "error", err)
			}
		}
	}
}

// push sends a single sample to the remote write endpoint.
func (p *pusher) push(name string, value float64, labels map[string]string) error {
	req := &prompb.WriteRequest{
		Timeseries: []prompb.TimeSeries{p.timeSeries(name, value, labels)},
	}

	data, err := proto.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling write request: %w", err)
	}
	compressed := snappy.Encode(nil, data)

	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(compressed))
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Encoding", "snappy")
	httpReq.Header.Set("Content-Type", "application/x-protobuf")
	httpReq.Header.Set("X-Prometheus-Remote-Write-Version", "0.1.0")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// timeSeries converts a sample to the remote write format.
func (p *pusher) timeSeries(name string, value float64, labels map[string]string) prompb.TimeSeries {
	metricName := name
	if p.prefix != "" {
		metricName = p.prefix + "_" + name
	}

	promLabels := make([]prompb.Label, 0, len(labels)+3)
	promLabels = append(promLabels, prompb.Label{Name: "__name__", Value: metricName})
	if p.job != "" {
		promLabels = append(promLabels, prompb.Label{Name: "job", Value: p.job})
	}
	if p.instance != "" {
		promLabels = append(promLabels, prompb.Label{Name: "instance", Value: p.instance})
	}
	for _, k := range sortedKeys(labels) {
		promLabels = append(promLabels, prompb.Label{Name: k, Value: labels[k]})
	}

	return prompb.TimeSeries{
		Labels: promLabels,
		Samples: []prompb.Sample{{
			Value:     value,
			Timestamp: time.Now().UnixMilli(),
		}},
	}
}

type pushGauge struct {
	pusher *pusher
	name   string
	labels map[string]string
}

func (g *pushGauge) Set(v float64) {
	g.pusher.send(g.name, v, g.labels)
}

type pushGaugeVec struct {
	pusher *pusher
	name   string
}

func (g *pushGaugeVec) With(labels prometheus.Labels) Gauge {
	return &pushGauge{pusher: g.pusher, name: g.name, labels: labels}
}

// pushCounter keeps the running total locally since remote write takes absolute values.
type pushCounter struct {
	mu     sync.Mutex
	pusher *pusher
	name   string
	labels map[string]string
	value  float64
}

func (c *pushCounter) Inc() {
	c.Add(1)
}

func (c *pushCounter) Add(v float64) {
	if v < 0 {
		panic("counter cannot decrease in value")
	}
	c.mu.Lock()
	c.value += v
	value := c.value
	c.mu.Unlock()
	c.pusher.send(c.name, value, c.labels)
}

type pushCounterVec struct {
	mu       sync.Mutex
	pusher   *pusher
	name     string
	counters map[string]*pushCounter
}

func (c *pushCounterVec) With(labels prometheus.Labels) Counter {
	key := labelsKey(labels)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.counters == nil {
		c.counters = make(map[string]*pushCounter)
	}
	if counter, ok := c.counters[key]; ok {
		return counter
	}
	counter := &pushCounter{pusher: c.pusher, name: c.name, labels: labels}
	c.counters[key] = counter
	return counter
}

// labelsKey builds a map key that doesn't depend on label iteration order.
func labelsKey(labels prometheus.Labels) string {
	var b strings.Builder
	for _, k := range sortedKeys(labels) {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
		b.WriteByte(',')
	}
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
