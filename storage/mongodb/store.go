package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/permalink"
)

// defaultCollection is the collection name used unless overridden.
const defaultCollection = "permalinks"

// scopeSeparator joins scope tokens into one indexable string. Tokens are
// "key:value" pairs and never contain the separator.
const scopeSeparator = "|"

// Store is a permalink.Store backed by a MongoDB collection. Value
// uniqueness per scope is enforced by a unique compound index; call
// EnsureIndexes once at startup.
type Store struct {
	coll *mongo.Collection
}

// Option configures a Store.
type Option func(*config)

type config struct {
	collection string
}

// WithCollection overrides the collection name.
func WithCollection(name string) Option {
	return func(c *config) {
		if name != "" {
			c.collection = name
		}
	}
}

// New creates a store on the given database.
func New(db *mongo.Database, opts ...Option) *Store {
	cfg := config{collection: defaultCollection}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{coll: db.Collection(cfg.collection)}
}

// EnsureIndexes creates the indexes the store relies on: the unique
// scope+value index that backs conflict detection, and lookup indexes for
// linkable and value queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "scope", Value: 1}, {Key: "value", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "linkable_type", Value: 1}, {Key: "linkable_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "value", Value: 1}},
		},
	})
	return err
}

// document is the stored shape of a permalink entry. The scope list is
// flattened into one string so the unique index treats it as a single
// namespace key rather than a multikey array.
type document struct {
	ID           string    `bson:"_id"`
	Value        string    `bson:"value"`
	Scope        string    `bson:"scope"`
	LinkableType string    `bson:"linkable_type"`
	LinkableID   string    `bson:"linkable_id"`
	Current      bool      `bson:"current"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toDocument(p *permalink.Permalink) document {
	return document{
		ID:           p.ID.String(),
		Value:        p.Value,
		Scope:        joinScope(p.Scope),
		LinkableType: p.Linkable.Type,
		LinkableID:   p.Linkable.ID.String(),
		Current:      p.Current,
		CreatedAt:    p.CreatedAt.UTC(),
		UpdatedAt:    p.UpdatedAt.UTC(),
	}
}

func (d document) toPermalink() (*permalink.Permalink, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	linkableID, err := uuid.Parse(d.LinkableID)
	if err != nil {
		return nil, err
	}
	p := &permalink.Permalink{
		ID:        id,
		Value:     d.Value,
		Scope:     splitScope(d.Scope),
		Linkable:  permalink.Ref{Type: d.LinkableType, ID: linkableID},
		Current:   d.Current,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	p.MarkPersisted()
	return p, nil
}

func joinScope(s permalink.Scope) string {
	return strings.Join(permalink.NormalizeScope(s), scopeSeparator)
}

func splitScope(s string) permalink.Scope {
	if s == "" {
		return permalink.Scope{}
	}
	return permalink.Scope(strings.Split(s, scopeSeparator))
}

// Insert persists a new entry.
func (s *Store) Insert(ctx context.Context, p *permalink.Permalink) error {
	_, err := s.coll.InsertOne(ctx, toDocument(p))
	if mongo.IsDuplicateKeyError(err) {
		return permalink.ErrDuplicateValue
	}
	if err != nil {
		return err
	}
	p.MarkPersisted()
	return nil
}

// Update replaces a persisted entry.
func (s *Store) Update(ctx context.Context, p *permalink.Permalink) error {
	res, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: p.ID.String()}}, toDocument(p))
	if mongo.IsDuplicateKeyError(err) {
		return permalink.ErrDuplicateValue
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return permalink.ErrNotFound
	}
	p.MarkPersisted()
	return nil
}

// Delete removes an entry.
func (s *Store) Delete(ctx context.Context, p *permalink.Permalink) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: p.ID.String()}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return permalink.ErrNotFound
	}
	return nil
}

// Find returns all entries matching the query.
func (s *Store) Find(ctx context.Context, q permalink.Query) ([]*permalink.Permalink, error) {
	opts := options.Find()
	switch q.Sort {
	case permalink.NewestFirst:
		opts.SetSort(bson.D{{Key: "updated_at", Value: -1}})
	case permalink.OldestFirst:
		opts.SetSort(bson.D{{Key: "updated_at", Value: 1}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := s.coll.Find(ctx, filterFor(q), opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var result []*permalink.Permalink
	for cursor.Next(ctx) {
		var d document
		if err := cursor.Decode(&d); err != nil {
			return nil, err
		}
		p, err := d.toPermalink()
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, cursor.Err()
}

// FindOne returns the first match or permalink.ErrNotFound.
func (s *Store) FindOne(ctx context.Context, q permalink.Query) (*permalink.Permalink, error) {
	opts := options.FindOne()
	switch q.Sort {
	case permalink.NewestFirst:
		opts.SetSort(bson.D{{Key: "updated_at", Value: -1}})
	case permalink.OldestFirst:
		opts.SetSort(bson.D{{Key: "updated_at", Value: 1}})
	}

	var d document
	err := s.coll.FindOne(ctx, filterFor(q), opts).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, permalink.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d.toPermalink()
}

// UnsetCurrent demotes all current entries of the linkable within the scope
// except the given one, as one bulk update.
func (s *Store) UnsetCurrent(ctx context.Context, ref permalink.Ref, scope permalink.Scope, exceptID uuid.UUID) error {
	filter := bson.D{
		{Key: "linkable_type", Value: ref.Type},
		{Key: "linkable_id", Value: ref.ID.String()},
		{Key: "scope", Value: joinScope(scope)},
		{Key: "current", Value: true},
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: exceptID.String()}}},
	}
	_, err := s.coll.UpdateMany(ctx, filter, bson.D{
		{Key: "$set", Value: bson.D{{Key: "current", Value: false}}},
	})
	return err
}

// filterFor translates a query into a bson filter document.
func filterFor(q permalink.Query) bson.D {
	filter := bson.D{}
	if q.Linkable != nil {
		filter = append(filter,
			bson.E{Key: "linkable_type", Value: q.Linkable.Type},
			bson.E{Key: "linkable_id", Value: q.Linkable.ID.String()},
		)
	}
	if q.Value != "" {
		filter = append(filter, bson.E{Key: "value", Value: q.Value})
	}
	if len(q.Values) > 0 {
		filter = append(filter, bson.E{Key: "value", Value: bson.D{{Key: "$in", Value: q.Values}}})
	}
	if len(q.ValuePatterns) > 0 {
		patterns := make(bson.A, 0, len(q.ValuePatterns))
		for _, p := range q.ValuePatterns {
			patterns = append(patterns, bson.D{{Key: "value", Value: bson.D{{Key: "$regex", Value: p}}}})
		}
		filter = append(filter, bson.E{Key: "$or", Value: patterns})
	}
	if q.Scope != nil {
		filter = append(filter, bson.E{Key: "scope", Value: joinScope(q.Scope)})
	}
	if q.CurrentOnly {
		filter = append(filter, bson.E{Key: "current", Value: true})
	}
	if q.ExcludeID != uuid.Nil {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: q.ExcludeID.String()}}})
	}
	return filter
}
