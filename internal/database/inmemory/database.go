package inmemory

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"
	db "github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/repositories/inmemory"
)

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		"users": {
			Name: "users",
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Id"},
				},
			},
		},
		"podcasts": {
			Name: "podcasts",
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.IntFieldIndex{Field: "Id"},
				},
			},
		},
		"episodes": {
			Name: "episodes",
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.IntFieldIndex{Field: "Id"},
				},
			},
		},
		"subscriptions": {
			Name: "subscriptions",
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.IntFieldIndex{Field: "Id"},
				},
			},
		},
	},
}

type database struct {
	memDB    *memdb.MemDB
	sequence *inmemory.Sequence
}

func NewInMemoryDatabase() (db.Database, error) {
	memDb, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory database: %w", err)
	}

	return &database{
		memDB:    memDb,
		sequence: inmemory.NewSequence(),
	}, nil
}

func (d *database) Migrate() error {
	// the schema is static, there is nothing to migrate
	return nil
}

func (d *database) NewContext(_ context.Context) (db.Context, error) {
	return newContext(d.memDB, d.sequence), nil
}
