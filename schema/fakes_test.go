package schema

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/docket-db/docket/database"
	"github.com/docket-db/docket/metadata"
)

// The fakes record every call so tests can assert exactly which commands
// an operation issued. Handles are created on first use, so a test can
// also assert that an operation touched nothing at all.

type createdIndex struct {
	keys bson.D
	opts bson.M
}

type fakeCollection struct {
	collName string

	indexes []database.IndexDescription

	created     []createdIndex
	dropped     []string
	droppedAll  bool
	collDropped bool

	listErr   error
	createErr error
	dropErr   error
}

func (c *fakeCollection) Name() string { return c.collName }

func (c *fakeCollection) ListIndexes(ctx context.Context) ([]database.IndexDescription, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.indexes, nil
}

func (c *fakeCollection) CreateIndex(ctx context.Context, keys bson.D, opts bson.M) (string, error) {
	if c.createErr != nil {
		return "", c.createErr
	}
	c.created = append(c.created, createdIndex{keys: keys, opts: opts})
	return database.DefaultIndexName(keys), nil
}

func (c *fakeCollection) DropIndex(ctx context.Context, name string) error {
	if c.dropErr != nil {
		return c.dropErr
	}
	c.dropped = append(c.dropped, name)
	return nil
}

func (c *fakeCollection) DropIndexes(ctx context.Context) error {
	c.droppedAll = true
	return nil
}

func (c *fakeCollection) Drop(ctx context.Context) error {
	c.collDropped = true
	return nil
}

type createdCollection struct {
	name string
	opts database.CreateCollectionOptions
}

type fakeDatabase struct {
	dbName string

	collections map[string]*fakeCollection

	// runCommand overrides the default always-ok response.
	runCommand func(cmd bson.D) (database.CommandResult, error)

	commands           []bson.D
	createdCollections []createdCollection
	dbDropped          bool
}

func (d *fakeDatabase) Name() string { return d.dbName }

func (d *fakeDatabase) Collection(name string) database.Collection {
	return d.collection(name)
}

func (d *fakeDatabase) collection(name string) *fakeCollection {
	if d.collections == nil {
		d.collections = make(map[string]*fakeCollection)
	}
	coll, ok := d.collections[name]
	if !ok {
		coll = &fakeCollection{collName: name}
		d.collections[name] = coll
	}
	return coll
}

func (d *fakeDatabase) RunCommand(ctx context.Context, cmd bson.D) (database.CommandResult, error) {
	d.commands = append(d.commands, cmd)
	if d.runCommand != nil {
		return d.runCommand(cmd)
	}
	return database.CommandResult{Ok: 1}, nil
}

func (d *fakeDatabase) CreateCollection(ctx context.Context, name string, opts database.CreateCollectionOptions) error {
	d.createdCollections = append(d.createdCollections, createdCollection{name: name, opts: opts})
	return nil
}

func (d *fakeDatabase) Drop(ctx context.Context) error {
	d.dbDropped = true
	return nil
}

type fakeClient struct {
	databases map[string]*fakeDatabase
}

func (c *fakeClient) Database(name string) database.Database {
	return c.database(name)
}

func (c *fakeClient) database(name string) *fakeDatabase {
	if c.databases == nil {
		c.databases = make(map[string]*fakeDatabase)
	}
	db, ok := c.databases[name]
	if !ok {
		db = &fakeDatabase{dbName: name}
		c.databases[name] = db
	}
	return db
}

func (c *fakeClient) Disconnect(ctx context.Context) error { return nil }

// commandNames lists the command name element of every recorded command.
func (d *fakeDatabase) commandNames() []string {
	names := make([]string, 0, len(d.commands))
	for _, cmd := range d.commands {
		if len(cmd) > 0 {
			names = append(names, cmd[0].Key)
		}
	}
	return names
}

// newTestManager registers the given classes and wires a Manager to fresh
// fakes.
func newTestManager(classes ...*metadata.ClassMetadata) (*Manager, *fakeClient) {
	registry := metadata.NewRegistry()
	for _, class := range classes {
		if err := registry.Register(class); err != nil {
			panic(err)
		}
	}
	client := &fakeClient{}
	return NewManager(registry, client, nil), client
}
