package redis_store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/paperchat/paperchat/models"
)

const idsKey = "documents:ids"

// Store keeps documents in redis with a TTL. It shares the in-memory store's
// volatility contract (documents expire, nothing is durable) while letting
// multiple service instances see the same uploads.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a redis-backed document store.
func NewStore(addr, password string, db int, ttl time.Duration) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Store{client: rdb, ttl: ttl}
}

func documentKey(id string) string { return fmt.Sprintf("document:%s", id) }

func (s *Store) Get(ctx context.Context, id string) (models.Document, error) {
	val, err := s.client.Get(ctx, documentKey(id)).Result()
	if err == redis.Nil {
		return models.Document{}, &models.DocumentNotFoundError{ID: id}
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("redis get: %w", err)
	}
	var doc models.Document
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return models.Document{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	return doc, nil
}

func (s *Store) Put(ctx context.Context, doc models.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	if err := s.client.Set(ctx, documentKey(doc.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return s.client.SAdd(ctx, idsKey, doc.ID).Err()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	removed, err := s.client.Del(ctx, documentKey(id)).Result()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	_ = s.client.SRem(ctx, idsKey, id).Err()
	if removed == 0 {
		return &models.DocumentNotFoundError{ID: id}
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]models.Document, error) {
	ids, err := s.client.SMembers(ctx, idsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	out := make([]models.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.Get(ctx, id)
		if err != nil {
			// Expired entries linger in the id set until listed.
			if _, ok := err.(*models.DocumentNotFoundError); ok {
				_ = s.client.SRem(ctx, idsKey, id).Err()
				continue
			}
			return nil, err
		}
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}
