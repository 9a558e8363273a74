package docstore

import (
	"context"
	"fmt"

	"github.com/paperchat/paperchat/config"
	"github.com/paperchat/paperchat/docstore/inmemory"
	redis_store "github.com/paperchat/paperchat/docstore/redis"
	"github.com/paperchat/paperchat/models"
)

// Store owns uploaded documents. It outlives individual questions and is the
// only shared state the retrieval core touches; the core reads a document once
// per question and never mutates it.
type Store interface {
	Get(ctx context.Context, id string) (models.Document, error)
	Put(ctx context.Context, doc models.Document) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Document, error)
}

// NewStore builds the store variant selected by cfg.Type.
func NewStore(cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case "", "inmemory":
		return inmemory.NewStore(), nil
	case "redis":
		return redis_store.NewStore(
			fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.TTL,
		), nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
}
