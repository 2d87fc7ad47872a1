package storage

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fossasystems/fossasat-fcp/internal/config"
)

const eepromKeyTempl = "fcp:eeprom:%s"

// RedisStore implements a Store kept in a single Redis string. Missing bytes
// read as erased cells.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	size   int
}

// NewRedisStore creates a RedisStore using the given configuration.
func NewRedisStore(c config.Config) (*RedisStore, error) {
	log.Info("storage: setting up Redis client")
	if len(c.Storage.Redis.Servers) == 0 {
		return nil, errors.New("at least one redis server must be configured")
	}

	var tlsConfig *tls.Config
	if c.Storage.Redis.TLSEnabled {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	var client redis.UniversalClient
	if c.Storage.Redis.Cluster {
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:     c.Storage.Redis.Servers,
			PoolSize:  c.Storage.Redis.PoolSize,
			Password:  c.Storage.Redis.Password,
			TLSConfig: tlsConfig,
		})
	} else if c.Storage.Redis.MasterName != "" {
		client = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       c.Storage.Redis.MasterName,
			SentinelAddrs:    c.Storage.Redis.Servers,
			SentinelPassword: c.Storage.Redis.Password,
			DB:               c.Storage.Redis.Database,
			PoolSize:         c.Storage.Redis.PoolSize,
			TLSConfig:        tlsConfig,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:      c.Storage.Redis.Servers[0],
			DB:        c.Storage.Redis.Database,
			Password:  c.Storage.Redis.Password,
			PoolSize:  c.Storage.Redis.PoolSize,
			TLSConfig: tlsConfig,
		})
	}

	return NewRedisStoreFromClient(client, c.Storage.Redis.KeyPrefix+fmt.Sprintf(eepromKeyTempl, c.Satellite.ID), EEPROMSize), nil
}

// NewRedisStoreFromClient creates a RedisStore on an existing client.
func NewRedisStoreFromClient(client redis.UniversalClient, key string, size int) *RedisStore {
	return &RedisStore{
		client: client,
		key:    key,
		size:   size,
	}
}

// ReadAt implements Store.
func (r *RedisStore) ReadAt(ctx context.Context, p []byte, addr Address) error {
	if err := checkRange(r, addr, len(p)); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}

	val, err := r.client.GetRange(ctx, r.key, int64(addr), int64(int(addr)+len(p)-1)).Result()
	if err != nil {
		return errors.Wrap(err, "getrange error")
	}

	n := copy(p, val)
	for i := n; i < len(p); i++ {
		p[i] = resetValue
	}
	return nil
}

// WriteAt implements Store.
func (r *RedisStore) WriteAt(ctx context.Context, p []byte, addr Address) error {
	if err := checkRange(r, addr, len(p)); err != nil {
		return err
	}

	// the image must exist in full before a partial write, otherwise Redis
	// pads the gap with zero bytes instead of erased cells
	erased := bytes.Repeat([]byte{resetValue}, r.size)
	if err := r.client.SetNX(ctx, r.key, erased, 0).Err(); err != nil {
		return errors.Wrap(err, "setnx error")
	}

	if err := r.client.SetRange(ctx, r.key, int64(addr), string(p)).Err(); err != nil {
		return errors.Wrap(err, "setrange error")
	}
	return nil
}

// Size implements Store.
func (r *RedisStore) Size() int {
	return r.size
}

// Ping implements Store.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Flush removes the image from Redis.
func (r *RedisStore) Flush(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
