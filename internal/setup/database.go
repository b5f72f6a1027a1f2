package setup

import (
	"context"
	"fmt"

	"github.com/The127/ioc"
	"github.com/podhaven/podhaven/internal/config"
	"github.com/podhaven/podhaven/internal/database"
	"github.com/podhaven/podhaven/internal/database/inmemory"
	"github.com/podhaven/podhaven/internal/database/postgres"
)

func Database(dc *ioc.DependencyCollection, c config.DatabaseConfig) database.Database {
	db := connectToDatabase(c)

	ioc.RegisterScoped(dc, func(_ *ioc.DependencyProvider) database.Factory {
		return database.NewDbFactory(db)
	})

	// one unit of work per request scope
	ioc.RegisterScoped(dc, func(_ *ioc.DependencyProvider) database.Context {
		dbContext, err := db.NewContext(context.Background())
		if err != nil {
			panic(fmt.Errorf("failed to create database context: %w", err))
		}

		return dbContext
	})

	return db
}

func connectToDatabase(c config.DatabaseConfig) database.Database {
	var db database.Database
	var err error

	switch c.Mode {
	case config.DatabaseModeInMemory:
		db, err = inmemory.NewInMemoryDatabase()

	case config.DatabaseModePostgres:
		db, err = postgres.NewPostgresDatabase(c.Postgres)

	default:
		panic(fmt.Errorf("unsupported database mode: %s", c.Mode))
	}

	if err != nil {
		panic(fmt.Errorf("failed to connect to database: %w", err))
	}

	return db
}
