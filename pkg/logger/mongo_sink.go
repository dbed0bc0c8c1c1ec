package logger

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	sinkQueueSize = 4096
	sinkBatchSize = 50
	sinkDrainTick = 2 * time.Second
)

type logDocument struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// MongoSink is an slog.Handler that asynchronously mirrors log records into
// a MongoDB collection, so the same database that holds the catalogue also
// holds a queryable audit trail. It must never slow the request path:
//
//   - records are enqueued into a buffered channel (non-blocking);
//   - one background goroutine drains the channel and performs InsertMany
//     in batches;
//   - a full channel drops the record silently;
//   - Close() flushes what is queued.
type MongoSink struct {
	stdout slog.Handler
	col    *mongo.Collection
	queue  chan logDocument
	done   chan struct{}
	attrs  []slog.Attr
}

// NewMongoSink wraps stdout so every record goes to both the terminal and
// the given collection. The caller owns the Mongo client lifecycle.
func NewMongoSink(stdout slog.Handler, col *mongo.Collection) *MongoSink {
	s := &MongoSink{
		stdout: stdout,
		col:    col,
		queue:  make(chan logDocument, sinkQueueSize),
		done:   make(chan struct{}),
	}
	go s.drainLoop()
	return s
}

func (s *MongoSink) Enabled(ctx context.Context, l slog.Level) bool {
	return s.stdout.Enabled(ctx, l)
}

func (s *MongoSink) Handle(ctx context.Context, r slog.Record) error {
	doc := logDocument{
		Time:  r.Time,
		Level: r.Level.String(),
		Msg:   r.Message,
		Attrs: bson.M{},
	}

	collect := func(a slog.Attr) {
		if a.Key == "request_id" {
			doc.RequestID = a.Value.String()
			return
		}
		doc.Attrs[a.Key] = a.Value.Any()
	}
	for _, a := range s.attrs {
		collect(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(a)
		return true
	})

	// Non-blocking enqueue: drop if the channel is full.
	select {
	case s.queue <- doc:
	default:
	}

	return s.stdout.Handle(ctx, r)
}

func (s *MongoSink) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(s.attrs)+len(attrs))
	merged = append(merged, s.attrs...)
	merged = append(merged, attrs...)
	return &MongoSink{
		stdout: s.stdout.WithAttrs(attrs),
		col:    s.col,
		queue:  s.queue,
		done:   s.done,
		attrs:  merged,
	}
}

func (s *MongoSink) WithGroup(name string) slog.Handler {
	return &MongoSink{
		stdout: s.stdout.WithGroup(name),
		col:    s.col,
		queue:  s.queue,
		done:   s.done,
		attrs:  s.attrs,
	}
}

func (s *MongoSink) drainLoop() {
	ticker := time.NewTicker(sinkDrainTick)
	defer ticker.Stop()

	batch := make([]interface{}, 0, sinkBatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, _ = s.col.InsertMany(ctx, batch) // insert errors are intentionally ignored
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case doc := <-s.queue:
			batch = append(batch, doc)
			if len(batch) >= sinkBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for len(s.queue) > 0 {
				batch = append(batch, <-s.queue)
			}
			flush()
			return
		}
	}
}

// Close flushes pending records. Safe to call multiple times.
func (s *MongoSink) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}
