package logger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LogDocument is the shape written to MongoDB. Order and vendor ids are
// lifted out of attrs so the collection can be indexed for support lookups.
type LogDocument struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	OrderID   any       `bson:"order_id,omitempty"`
	VendorID  any       `bson:"vendor_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// MongoHandler is a slog.Handler that ships records to a MongoDB
// collection. Writes are batched off the request path; when the buffer is
// full records are dropped and counted rather than blocking a handler.
type MongoHandler struct {
	sink   *sink
	client *mongo.Client
	attrs  []slog.Attr
	level  slog.Level
	once   *sync.Once
}

// NewMongoHandler connects to uri and starts shipping. Close must be
// called to flush the last batch.
func NewMongoHandler(ctx context.Context, uri, db, collection string) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(4))
	if err != nil {
		return nil, fmt.Errorf("logger/mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("logger/mongo: ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	if _, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "time", Value: -1}}},
		{Keys: bson.D{{Key: "request_id", Value: 1}}},
		{Keys: bson.D{{Key: "order_id", Value: 1}}},
	}); err != nil {
		Warn("logger/mongo: index creation failed", "error", err.Error())
	}

	return &MongoHandler{
		sink:   startSink(col, 4096, 100, 2*time.Second),
		client: client,
		level:  slog.LevelInfo,
		once:   new(sync.Once),
	}, nil
}

func (h *MongoHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	h.sink.offer(toDocument(h.attrs, r))
	return nil
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

// WithGroup is flattened; the collection is queried by top-level keys only.
func (h *MongoHandler) WithGroup(string) slog.Handler { return h }

// Dropped is the number of records lost to a full buffer.
func (h *MongoHandler) Dropped() int64 { return h.sink.dropped.Load() }

// Close flushes buffered records and disconnects. Later calls are no-ops.
func (h *MongoHandler) Close() {
	h.once.Do(func() {
		h.sink.close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.client.Disconnect(ctx)
	})
}

func toDocument(inherited []slog.Attr, r slog.Record) LogDocument {
	doc := LogDocument{Time: r.Time, Level: r.Level.String(), Msg: r.Message, Attrs: bson.M{}}
	apply := func(a slog.Attr) bool {
		switch a.Key {
		case "request_id":
			doc.RequestID = a.Value.String()
		case "order_id":
			doc.OrderID = a.Value.Any()
		case "vendor_id":
			doc.VendorID = a.Value.Any()
		default:
			doc.Attrs[a.Key] = a.Value.Resolve().Any()
		}
		return true
	}
	for _, a := range inherited {
		apply(a)
	}
	r.Attrs(apply)
	if len(doc.Attrs) == 0 {
		doc.Attrs = nil
	}
	return doc
}

// inserter is the part of *mongo.Collection the sink writes through.
type inserter interface {
	InsertMany(ctx context.Context, docs []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// sink buffers documents and writes them in batches of up to batchSize, or
// whatever has accumulated every interval.
type sink struct {
	col       inserter
	queue     chan LogDocument
	batchSize int
	interval  time.Duration
	dropped   atomic.Int64
	stop      chan struct{}
	stopped   chan struct{}
}

func startSink(col inserter, buffer, batchSize int, interval time.Duration) *sink {
	s := &sink{
		col:       col,
		queue:     make(chan LogDocument, buffer),
		batchSize: batchSize,
		interval:  interval,
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *sink) offer(doc LogDocument) {
	select {
	case s.queue <- doc:
	default:
		s.dropped.Add(1)
	}
}

func (s *sink) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	batch := make([]interface{}, 0, s.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Logging a failure here would feed back into this sink.
		_, _ = s.col.InsertMany(ctx, batch)
		batch = make([]interface{}, 0, s.batchSize)
	}

	for {
		select {
		case doc := <-s.queue:
			batch = append(batch, doc)
			if len(batch) >= s.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stop:
			for {
				select {
				case doc := <-s.queue:
					batch = append(batch, doc)
				default:
					flush()
					return
				}
			}
		}
	}
}

// close stops the loop after a final flush and waits for it.
func (s *sink) close() {
	close(s.stop)
	<-s.stopped
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
