package settings

import (
	"context"
	"errors"
	"time"
)

var ErrSettingNotFound = errors.New("setting not found")

type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
	TypeJSON    ValueType = "json"
)

// Entry is one typed key/value configuration row. Value keeps the raw text;
// interpretation belongs to the reader.
type Entry struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Type        ValueType `json:"type"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	IsPublic    bool      `json:"is_public"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Settings interface {
	Get(ctx context.Context, key string) (Entry, error)
	List(ctx context.Context, publicOnly bool) ([]Entry, error)
	Upsert(ctx context.Context, e Entry) error
	// InsertMissing stores the entries whose keys are absent and reports how
	// many were added. Existing rows are never overwritten.
	InsertMissing(ctx context.Context, entries []Entry) (int, error)
}
