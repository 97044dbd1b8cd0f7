package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect opens a client for the given MongoDB URI and verifies the
// connection with a ping.
func Connect(ctx context.Context, uri string) (Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return &mongoClient{client: client}, nil
}

type mongoClient struct {
	client *mongo.Client
}

func (c *mongoClient) Database(name string) Database {
	return &mongoDatabase{db: c.client.Database(name)}
}

func (c *mongoClient) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

type mongoDatabase struct {
	db *mongo.Database
}

func (d *mongoDatabase) Name() string {
	return d.db.Name()
}

func (d *mongoDatabase) Collection(name string) Collection {
	return &mongoCollection{coll: d.db.Collection(name), parent: d}
}

func (d *mongoDatabase) RunCommand(ctx context.Context, cmd bson.D) (CommandResult, error) {
	raw, err := d.db.RunCommand(ctx, cmd).Raw()
	if err == nil {
		return parseCommandResult(raw), nil
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		result := CommandResult{Code: ce.Code, ErrMsg: ce.Message}
		if len(ce.Raw) > 0 {
			result = parseCommandResult(ce.Raw)
		}
		return result, &CommandError{Code: ce.Code, Message: ce.Message}
	}

	return CommandResult{}, err
}

func (d *mongoDatabase) CreateCollection(ctx context.Context, name string, opts CreateCollectionOptions) error {
	createOpts := options.CreateCollection().
		SetCapped(opts.Capped).
		SetSizeInBytes(opts.SizeInBytes).
		SetMaxDocuments(opts.MaxDocuments)

	if len(opts.Validator) > 0 {
		createOpts.SetValidator(opts.Validator)
		if opts.ValidationLevel != "" {
			createOpts.SetValidationLevel(opts.ValidationLevel)
		}
		if opts.ValidationAction != "" {
			createOpts.SetValidationAction(opts.ValidationAction)
		}
	}

	if err := d.db.CreateCollection(ctx, name, createOpts); err != nil {
		return translateError(err)
	}
	return nil
}

func (d *mongoDatabase) Drop(ctx context.Context) error {
	return translateError(d.db.Drop(ctx))
}

type mongoCollection struct {
	coll   *mongo.Collection
	parent *mongoDatabase
}

func (c *mongoCollection) Name() string {
	return c.coll.Name()
}

func (c *mongoCollection) ListIndexes(ctx context.Context) ([]IndexDescription, error) {
	cursor, err := c.coll.Indexes().List(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	var indexes []IndexDescription
	for cursor.Next(ctx) {
		desc, err := decodeIndex(cursor.Current)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, desc)
	}
	if err := cursor.Err(); err != nil {
		return nil, translateError(err)
	}
	return indexes, nil
}

func (c *mongoCollection) CreateIndex(ctx context.Context, keys bson.D, opts bson.M) (string, error) {
	indexOpts, createOpts := translateIndexOptions(opts)
	model := mongo.IndexModel{Keys: keys, Options: indexOpts}

	var name string
	var err error
	if createOpts != nil {
		name, err = c.coll.Indexes().CreateOne(ctx, model, createOpts)
	} else {
		name, err = c.coll.Indexes().CreateOne(ctx, model)
	}
	if err != nil {
		return "", translateError(err)
	}
	return name, nil
}

// DropIndex is issued as a raw dropIndexes command: text indexes drop only
// by their server-reported name, which the index view cannot always derive.
func (c *mongoCollection) DropIndex(ctx context.Context, name string) error {
	cmd := bson.D{
		{Key: "dropIndexes", Value: c.coll.Name()},
		{Key: "index", Value: name},
	}
	_, err := c.parent.RunCommand(ctx, cmd)
	return err
}

func (c *mongoCollection) DropIndexes(ctx context.Context) error {
	cmd := bson.D{
		{Key: "dropIndexes", Value: c.coll.Name()},
		{Key: "index", Value: "*"},
	}
	_, err := c.parent.RunCommand(ctx, cmd)
	return err
}

func (c *mongoCollection) Drop(ctx context.Context) error {
	return translateError(c.coll.Drop(ctx))
}

// decodeIndex splits one listIndexes document into its ordered key pattern
// and the remaining options.
func decodeIndex(raw bson.Raw) (IndexDescription, error) {
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return IndexDescription{}, fmt.Errorf("failed to decode index description: %w", err)
	}

	desc := IndexDescription{Options: bson.M{}}
	for _, elem := range doc {
		if elem.Key == "key" {
			if key, ok := elem.Value.(bson.D); ok {
				desc.Key = key
			}
			continue
		}
		desc.Options[elem.Key] = elem.Value
	}
	return desc, nil
}

func parseCommandResult(raw bson.Raw) CommandResult {
	var result CommandResult
	if v, err := raw.LookupErr("ok"); err == nil {
		if f, ok := rawNumber(v); ok {
			result.Ok = f
		}
	}
	if v, err := raw.LookupErr("code"); err == nil {
		if f, ok := rawNumber(v); ok {
			result.Code = int32(f)
		}
	}
	if v, err := raw.LookupErr("errmsg"); err == nil {
		if s, ok := v.StringValueOK(); ok {
			result.ErrMsg = s
		}
	}
	if v, err := raw.LookupErr("proposedKey"); err == nil {
		if doc, ok := v.DocumentOK(); ok {
			var key bson.D
			if err := bson.Unmarshal(doc, &key); err == nil {
				result.ProposedKey = key
			}
		}
	}
	return result
}

func rawNumber(v bson.RawValue) (float64, bool) {
	switch v.Type {
	case bson.TypeDouble:
		return v.DoubleOK()
	case bson.TypeInt32:
		if n, ok := v.Int32OK(); ok {
			return float64(n), true
		}
	case bson.TypeInt64:
		if n, ok := v.Int64OK(); ok {
			return float64(n), true
		}
	}
	return 0, false
}
