package history

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Default MongoDB names.
const (
	DefaultDatabase   = "stickerwall"
	DefaultCollection = "generations"
)

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration // server selection timeout, default 5s
}

// MongoStore persists records in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore connects and pings the server. An unreachable server is an
// error rather than a store that fails later.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) Insert(ctx context.Context, r Record) error {
	if _, err := s.coll.InsertOne(ctx, toDocument(normalize(r))); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (s *MongoStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(clampLimit(limit)))
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer cur.Close(ctx)

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	out := make([]Record, 0, len(docs))
	for _, d := range docs {
		r, err := d.record()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// document is the stored form of a Record. BSON has no unsigned 64-bit
// integer, so the seed is kept as a decimal string.
type document struct {
	ID            string    `bson:"_id"`
	CreatedAt     time.Time `bson:"created_at"`
	Width         int       `bson:"width"`
	Height        int       `bson:"height"`
	Density       float64   `bson:"density"`
	SizeVariation float64   `bson:"size_variation"`
	Seed          string    `bson:"seed"`
	Rounds        int       `bson:"rounds"`
	Background    string    `bson:"background"`
	Format        string    `bson:"format"`
	Backend       string    `bson:"backend"`
	Images        int       `bson:"images"`
	Placements    int       `bson:"placements"`
	Bytes         int       `bson:"bytes"`
	DurationMS    int64     `bson:"duration_ms"`
	CacheHit      bool      `bson:"cache_hit"`
}

func toDocument(r Record) document {
	return document{
		ID:            r.ID,
		CreatedAt:     r.CreatedAt,
		Width:         r.Width,
		Height:        r.Height,
		Density:       r.Density,
		SizeVariation: r.SizeVariation,
		Seed:          strconv.FormatUint(r.Seed, 10),
		Rounds:        r.Rounds,
		Background:    r.Background,
		Format:        r.Format,
		Backend:       r.Backend,
		Images:        r.Images,
		Placements:    r.Placements,
		Bytes:         r.Bytes,
		DurationMS:    r.Duration.Milliseconds(),
		CacheHit:      r.CacheHit,
	}
}

func (d document) record() (Record, error) {
	seed, err := strconv.ParseUint(d.Seed, 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("record %s: bad seed %q: %w", d.ID, d.Seed, err)
	}
	return Record{
		ID:            d.ID,
		CreatedAt:     d.CreatedAt,
		Width:         d.Width,
		Height:        d.Height,
		Density:       d.Density,
		SizeVariation: d.SizeVariation,
		Seed:          seed,
		Rounds:        d.Rounds,
		Background:    d.Background,
		Format:        d.Format,
		Backend:       d.Backend,
		Images:        d.Images,
		Placements:    d.Placements,
		Bytes:         d.Bytes,
		Duration:      time.Duration(d.DurationMS) * time.Millisecond,
		CacheHit:      d.CacheHit,
	}, nil
}
