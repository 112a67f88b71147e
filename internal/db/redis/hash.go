package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/embedlab/internal/db"
)

// HSet stores hash fields at the given key.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	builder := s.b().Hset().Key(key).FieldValue()
	for field, value := range fields {
		builder = builder.FieldValue(field, value)
	}
	if err := s.do(ctx, builder.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HSetMulti stores multiple hashes in a single DoMulti round-trip.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, item := range items {
		builder := s.b().Hset().Key(item.Key).FieldValue()
		for field, value := range item.Fields {
			builder = builder.FieldValue(field, value)
		}
		cmds[i] = builder.Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", items[i].Key, err)}
		}
	}
	return nil
}

// Del removes a key.
func (s *Store) Del(ctx context.Context, key string) error {
	cmd := s.b().Del().Key(key).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}
