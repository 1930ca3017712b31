// Package bootstrap builds the record store and its backing clients from config.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gogotex/gogotex/backend/course-service/internal/config"
	"github.com/gogotex/gogotex/backend/course-service/internal/course/repository"
	"github.com/gogotex/gogotex/backend/course-service/internal/database"
	"github.com/gogotex/gogotex/backend/course-service/internal/storage"
	"github.com/gogotex/gogotex/backend/course-service/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const mongoConnectAttempts = 5

// Deps holds the store and the clients it was built on. Close releases them.
type Deps struct {
	Store *repository.Store
	Redis *redis.Client
	Mongo *mongo.Client

	cfg *config.Config
}

// Open connects what cfg asks for and assembles the record store.
func Open(ctx context.Context, cfg *config.Config) (*Deps, error) {
	d := &Deps{cfg: cfg}

	if addr := cfg.Redis.Addr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			if cfg.Store.LockBackend == config.BackendRedis {
				return nil, fmt.Errorf("redis %s: %w", addr, err)
			}
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
		} else {
			logger.Infof("connected to Redis: %s", addr)
			d.Redis = client
		}
	}

	backend, err := d.openBackend(ctx)
	if err != nil {
		d.Close(context.Background())
		return nil, err
	}
	locker, err := d.openLocker()
	if err != nil {
		d.Close(context.Background())
		return nil, err
	}
	d.Store = repository.NewStore(backend, locker, cfg.Store.LockTimeout)
	logger.Infof("record store: backend=%s locks=%s lock_timeout=%s", cfg.Store.Backend, cfg.Store.LockBackend, cfg.Store.LockTimeout)
	return d, nil
}

func (d *Deps) openBackend(ctx context.Context) (repository.Backend, error) {
	switch d.cfg.Store.Backend {
	case config.BackendMemory:
		return repository.NewMemoryBackend(), nil
	case config.BackendMongo:
		client, err := database.ConnectMongoWithRetry(ctx, d.cfg.MongoDB.URI, d.cfg.MongoDB.Timeout, mongoConnectAttempts)
		if err != nil {
			return nil, err
		}
		d.Mongo = client
		col := client.Database(d.cfg.MongoDB.Database).Collection(d.cfg.MongoDB.Collection)
		return repository.NewMongoBackend(col), nil
	default:
		return repository.NewFileBackend(d.cfg.Store.DataDir)
	}
}

func (d *Deps) openLocker() (repository.Locker, error) {
	switch d.cfg.Store.LockBackend {
	case config.BackendMemory:
		return repository.NewMemoryLocker(), nil
	case config.BackendRedis:
		if d.Redis == nil {
			return nil, fmt.Errorf("redis lock backend needs a redis connection")
		}
		return repository.NewRedisLocker(d.Redis, "", d.cfg.Store.LockTTL), nil
	default:
		return repository.NewFileLocker(d.cfg.Store.DataDir)
	}
}

// Exporter returns a snapshot exporter when MinIO is configured, or nil.
func (d *Deps) Exporter(ctx context.Context) (*storage.Exporter, error) {
	mc := d.cfg.MinIO
	scfg := &storage.MinIOConfig{Endpoint: mc.Endpoint, AccessKey: mc.AccessKey, SecretKey: mc.SecretKey, UseSSL: mc.UseSSL, Bucket: mc.Bucket}
	if !scfg.Enabled() {
		return nil, nil
	}
	st, err := storage.NewMinIOStorage(ctx, scfg)
	if err != nil {
		return nil, err
	}
	logger.Infof("snapshot export enabled: bucket=%s", st.Bucket())
	return storage.NewExporter(d.Store, st), nil
}

// Ready checks every dependency in use and reports each one.
func (d *Deps) Ready(ctx context.Context) (bool, map[string]bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	deps := map[string]bool{}
	deps["store"] = d.Store.Ping(ctx) == nil
	if d.Redis != nil {
		deps["redis"] = d.Redis.Ping(ctx).Err() == nil
	}
	if d.Mongo != nil {
		deps["mongodb"] = d.Mongo.Ping(ctx, nil) == nil
	}
	ready := true
	for _, ok := range deps {
		ready = ready && ok
	}
	return ready, deps
}

// Close disconnects the clients Open created.
func (d *Deps) Close(ctx context.Context) {
	if d.Mongo != nil {
		if err := d.Mongo.Disconnect(ctx); err != nil {
			logger.Warnf("mongo disconnect: %v", err)
		}
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
}
