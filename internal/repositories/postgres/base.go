package postgres

import (
	"time"

	"github.com/podhaven/podhaven/internal/repositories"
)

type RowScanner interface {
	Scan(dest ...any) error
}

type postgresBaseModel struct {
	id        int64
	createdAt time.Time
	updatedAt time.Time
	xmin      uint32
}

func mapBase(b repositories.BaseModel) postgresBaseModel {
	var xmin uint32
	if v, ok := b.GetVersion().(uint32); ok {
		xmin = v
	}

	return postgresBaseModel{
		id:        b.GetId(),
		createdAt: b.GetCreatedAt(),
		updatedAt: b.GetUpdatedAt(),
		xmin:      xmin,
	}
}

func (b *postgresBaseModel) MapBase() repositories.BaseModel {
	return repositories.NewBaseModelFromDB(b.id, b.createdAt, b.updatedAt, b.xmin)
}
