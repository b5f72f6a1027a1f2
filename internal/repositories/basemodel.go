package repositories

import (
	"time"
)

// BaseModel carries the store-assigned numeric id and the bookkeeping
// columns shared by all relational entities. The id stays 0 until the
// insert is executed by the database context.
type BaseModel struct {
	id        int64
	createdAt time.Time
	updatedAt time.Time
	version   any
}

func NewBaseModel() BaseModel {
	return BaseModel{
		id:        0,
		createdAt: time.Now(),
		updatedAt: time.Now(),
		version:   nil,
	}
}

func NewBaseModelFromDB(id int64, createdAt time.Time, updatedAt time.Time, version any) BaseModel {
	return BaseModel{
		id:        id,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
	}
}

func (b *BaseModel) GetId() int64 {
	return b.id
}

func (b *BaseModel) GetCreatedAt() time.Time {
	return b.createdAt
}

func (b *BaseModel) GetUpdatedAt() time.Time {
	return b.updatedAt
}

func (b *BaseModel) GetVersion() any {
	return b.version
}

// SetVersion is only supposed to be called by the repository implementations.
func (b *BaseModel) SetVersion(version any) {
	b.version = version
}

// SetId is only supposed to be called by the repository implementations
// after the store assigned an id on insert.
func (b *BaseModel) SetId(id int64) {
	b.id = id
}
