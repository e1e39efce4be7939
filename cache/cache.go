// Package cache persists aggregated menu snapshots keyed by (meal-time, date)
// so repeated requests skip re-fetching. Stores are read-then-maybe-write;
// concurrent misses for the same key are a benign race because writes are
// idempotent.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"menuplanner/menu"
)

// ErrMiss is returned by Get when no snapshot exists for the key.
var ErrMiss = errors.New("cache miss")

// Key is a normalized (meal-time, date) pair. Lookups are case- and
// separator-insensitive: "Late Lunch"/"2025/09/20" and "late lunch"/
// "2025-09-20" address the same entry.
type Key struct {
	MealTime string
	Date     string
}

func NewKey(mealTime, date string) Key {
	mt := strings.ToLower(strings.TrimSpace(mealTime))
	mt = strings.ReplaceAll(mt, " ", "-")

	d := strings.TrimSpace(date)
	d = strings.ReplaceAll(d, "/", "-")

	return Key{MealTime: mt, Date: d}
}

func (k Key) String() string {
	return fmt.Sprintf("%s_%s", k.MealTime, k.Date)
}

// FileName is the on-disk name used by file-like stores.
func (k Key) FileName() string {
	return fmt.Sprintf("menu_%s.json", k.String())
}

// SnapshotStore persists menu snapshots. Get returns ErrMiss when absent; a
// hit returns the stored snapshot unchanged.
type SnapshotStore interface {
	Get(ctx context.Context, key Key) (menu.MenuSnapshot, error)
	Put(ctx context.Context, key Key, snapshot menu.MenuSnapshot) error
}
