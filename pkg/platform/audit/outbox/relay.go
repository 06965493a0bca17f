// Package outbox publishes audit rows written by the transactional outbox to
// Kafka. Rows are claimed with FOR UPDATE SKIP LOCKED so several relays can
// run against one database without publishing a row twice per attempt.
package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"malpot/pkg/platform/tx"
)

const (
	defaultBatchSize = 100
	defaultInterval  = time.Second
)

// Producer is the subset of *kgo.Client used by the relay.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Relay moves unprocessed outbox rows to a Kafka topic.
type Relay struct {
	db        *sql.DB
	producer  Producer
	topic     string
	batchSize int
	interval  time.Duration
	logger    *slog.Logger
	metrics   *Metrics
}

type Option func(*Relay)

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}

func New(db *sql.DB, producer Producer, topic string, opts ...Option) *Relay {
	r := &Relay{
		db:        db,
		producer:  producer,
		topic:     topic,
		batchSize: defaultBatchSize,
		interval:  defaultInterval,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run publishes batches until ctx is cancelled. A failed batch is logged and
// retried on the next tick; its rows stay unprocessed.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		for {
			n, err := r.PublishBatch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				r.logger.WarnContext(ctx, "outbox batch failed", "error", err)
				break
			}
			if n < r.batchSize {
				break
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

type row struct {
	id          string
	aggregateID string
	eventType   string
	payload     []byte
}

// PublishBatch claims up to batchSize rows, produces them and marks them
// processed in the same transaction. It returns the number of rows published.
func (r *Relay) PublishBatch(ctx context.Context) (int, error) {
	var published int
	err := tx.NewSQL(r.db).RunInTx(ctx, func(ctx context.Context) error {
		q := tx.Conn(ctx, r.db)

		rows, err := r.claim(ctx, q)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		records := make([]*kgo.Record, 0, len(rows))
		ids := make([]string, 0, len(rows))
		for _, row := range rows {
			records = append(records, &kgo.Record{
				Topic: r.topic,
				Key:   []byte(row.aggregateID),
				Value: row.payload,
				Headers: []kgo.RecordHeader{
					{Key: "event_type", Value: []byte(row.eventType)},
				},
			})
			ids = append(ids, row.id)
		}

		if err := r.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
			if r.metrics != nil {
				r.metrics.PublishFailures.Inc()
			}
			return fmt.Errorf("produce outbox batch: %w", err)
		}

		if _, err := q.ExecContext(ctx,
			`UPDATE outbox SET processed_at = $1 WHERE id = ANY($2)`,
			time.Now().UTC(), pq.Array(ids),
		); err != nil {
			return fmt.Errorf("mark outbox rows processed: %w", err)
		}
		published = len(rows)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if r.metrics != nil && published > 0 {
		r.metrics.Published.Add(float64(published))
	}
	return published, nil
}

func (r *Relay) claim(ctx context.Context, q tx.DBTX) ([]row, error) {
	rs, err := q.QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload
		FROM outbox
		WHERE processed_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, r.batchSize)
	if err != nil {
		return nil, fmt.Errorf("claim outbox rows: %w", err)
	}
	defer rs.Close()

	var out []row
	for rs.Next() {
		var rw row
		if err := rs.Scan(&rw.id, &rw.aggregateID, &rw.eventType, &rw.payload); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		out = append(out, rw)
	}
	return out, rs.Err()
}

// EnsureTopic creates the audit topic when it does not exist yet.
func EnsureTopic(ctx context.Context, admin *kadm.Client, topic string, partitions int32, replicationFactor int16) error {
	resp, err := admin.CreateTopics(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, t := range resp {
		if t.Err != nil && !errors.Is(t.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", t.Topic, t.Err)
		}
	}
	return nil
}

// Metrics holds Prometheus metrics for the relay.
type Metrics struct {
	Published       prometheus.Counter
	PublishFailures prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Published: factory.NewCounter(prometheus.CounterOpts{
			Name: "malpot_outbox_published_total",
			Help: "Total number of outbox rows published to Kafka",
		}),
		PublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "malpot_outbox_publish_failures_total",
			Help: "Total number of outbox batches that failed to publish",
		}),
	}
}
