// db/redis.go
package db

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logger "github.com/driftship/sentinel/logging"
	"github.com/driftship/sentinel/model"
)

var (
	RedisClient   *redis.Client
	encryptionKey []byte
)

// ErrCacheUnavailable is returned when the Redis client has not been
// initialized. Callers treat it as a cache miss.
var ErrCacheUnavailable = errors.New("redis client not initialized")

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
		PoolSize:     viper.GetInt("redis.poolSize"),
		PoolTimeout:  viper.GetDuration("redis.poolTimeout"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	encryptionKey = []byte(viper.GetString("redis.encryptionKey"))
	if len(encryptionKey) != 32 {
		return fmt.Errorf("invalid encryption key length: must be 32 bytes")
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

func encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func CacheRole(ctx context.Context, role *model.Role) error {
	if RedisClient == nil {
		return ErrCacheUnavailable
	}
	roleJSON, err := json.Marshal(role)
	if err != nil {
		return fmt.Errorf("failed to marshal role: %w", err)
	}

	key := fmt.Sprintf("role:%s", role.ID)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, roleJSON, defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache role: %w", err)
	}

	logger.Debug("Role cached successfully", zap.String("roleID", role.ID))
	return nil
}

func GetCachedRole(ctx context.Context, roleID string) (*model.Role, error) {
	if RedisClient == nil {
		return nil, ErrCacheUnavailable
	}
	key := fmt.Sprintf("role:%s", roleID)
	roleJSON, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("Role not found in cache", zap.String("roleID", roleID))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get role from cache: %w", err)
	}

	var role model.Role
	err = json.Unmarshal([]byte(roleJSON), &role)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal role: %w", err)
	}

	logger.Debug("Role retrieved from cache", zap.String("roleID", roleID))
	return &role, nil
}

func DeleteCachedRole(ctx context.Context, roleID string) error {
	if RedisClient == nil {
		return ErrCacheUnavailable
	}
	key := fmt.Sprintf("role:%s", roleID)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete role from cache: %w", err)
	}
	logger.Debug("Role deleted from cache", zap.String("roleID", roleID))
	return nil
}

// CacheUserPermissions stores a user's unconditional effective-permission
// listing. Assignment-bearing entries reveal who may do what, so they are
// encrypted at rest in Redis the same way the deployment encrypts session
// material.
func CacheUserPermissions(ctx context.Context, userID string, permissions []*model.Permission) error {
	if RedisClient == nil {
		return ErrCacheUnavailable
	}
	permJSON, err := json.Marshal(permissions)
	if err != nil {
		return fmt.Errorf("failed to marshal permissions: %w", err)
	}

	encrypted, err := encrypt(permJSON)
	if err != nil {
		return fmt.Errorf("failed to encrypt permissions: %w", err)
	}

	key := fmt.Sprintf("userperms:%s", userID)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, base64.StdEncoding.EncodeToString(encrypted), defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache user permissions: %w", err)
	}

	logger.Debug("User permissions cached successfully", zap.String("userID", userID))
	return nil
}

func GetCachedUserPermissions(ctx context.Context, userID string) ([]*model.Permission, error) {
	if RedisClient == nil {
		return nil, ErrCacheUnavailable
	}
	key := fmt.Sprintf("userperms:%s", userID)
	encryptedStr, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("User permissions not found in cache", zap.String("userID", userID))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user permissions from cache: %w", err)
	}

	encrypted, err := base64.StdEncoding.DecodeString(encryptedStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode user permissions: %w", err)
	}

	permJSON, err := decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt user permissions: %w", err)
	}

	var permissions []*model.Permission
	err = json.Unmarshal(permJSON, &permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal user permissions: %w", err)
	}

	logger.Debug("User permissions retrieved from cache", zap.String("userID", userID))
	return permissions, nil
}

func DeleteCachedUserPermissions(ctx context.Context, userID string) error {
	if RedisClient == nil {
		return ErrCacheUnavailable
	}
	key := fmt.Sprintf("userperms:%s", userID)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete user permissions from cache: %w", err)
	}
	logger.Debug("User permissions deleted from cache", zap.String("userID", userID))
	return nil
}

// InvalidateAllUserPermissions drops every cached permission listing. Role
// definition changes affect an unknown set of users, so the whole keyspace
// goes.
func InvalidateAllUserPermissions(ctx context.Context) error {
	if RedisClient == nil {
		return ErrCacheUnavailable
	}
	iter := RedisClient.Scan(ctx, 0, "userperms:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := RedisClient.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to invalidate cached permissions: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached permissions: %w", err)
	}
	logger.Debug("All cached user permission listings invalidated")
	return nil
}

func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	if RedisClient == nil {
		return false, ErrCacheUnavailable
	}
	pipe := RedisClient.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}

func LockResource(ctx context.Context, resourceName string, ttl time.Duration) (bool, error) {
	if RedisClient == nil {
		return false, ErrCacheUnavailable
	}
	key := fmt.Sprintf("lock:%s", resourceName)
	locked, err := RedisClient.SetNX(ctx, key, "locked", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	return locked, nil
}

func UnlockResource(ctx context.Context, resourceName string) error {
	if RedisClient == nil {
		return ErrCacheUnavailable
	}
	key := fmt.Sprintf("lock:%s", resourceName)
	if err := RedisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
