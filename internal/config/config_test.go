package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("AMQP_ENABLED", "")
	t.Setenv("SEED_EXAMPLE", "")

	cfg := Load()
	if cfg.Env != "dev" {
		t.Fatalf("expected dev env, got %q", cfg.Env)
	}
	if cfg.StorageDriver != StorageMemory {
		t.Fatalf("expected memory storage, got %q", cfg.StorageDriver)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.AMQPEnabled {
		t.Fatal("amqp should be off by default")
	}
	if !cfg.SeedExample {
		t.Fatal("example seed should be on by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "BOLT")
	t.Setenv("BOLT_PATH", "/tmp/x.db")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "5")
	t.Setenv("AMQP_ENABLED", "yes")
	t.Setenv("RABBITMQ_URL", "amqp://u:p@broker:5672/")

	cfg := Load()
	if cfg.StorageDriver != StorageBolt || cfg.BoltPath != "/tmp/x.db" {
		t.Fatalf("unexpected storage %q %q", cfg.StorageDriver, cfg.BoltPath)
	}
	if cfg.AccessTTLMin != 5 {
		t.Fatalf("expected ttl 5, got %d", cfg.AccessTTLMin)
	}
	if !cfg.AMQPEnabled || cfg.AMQPURL != "amqp://u:p@broker:5672/" {
		t.Fatalf("unexpected amqp settings %v %q", cfg.AMQPEnabled, cfg.AMQPURL)
	}
}

func TestRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	rl := LoadRateLimitConfig()
	if rl.Capacity != 1 {
		t.Fatalf("capacity should clamp to 1, got %d", rl.Capacity)
	}
	if rl.TTL != 10*time.Second {
		t.Fatalf("ttl should be at least five intervals, got %v", rl.TTL)
	}
}

func TestCacheConfigGenerationKey(t *testing.T) {
	t.Setenv("CACHE_PREFIX", "test:cache")
	t.Setenv("CACHE_METHODS", "get, head")

	cc := LoadCacheConfig()
	if cc.GenerationKey != "test:cache:generation" {
		t.Fatalf("unexpected generation key %q", cc.GenerationKey)
	}
	if !cc.Methods["GET"] || !cc.Methods["HEAD"] || cc.Methods["POST"] {
		t.Fatalf("unexpected methods %v", cc.Methods)
	}
}

func TestRedisConfigHostPort(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_TLS", "1")

	rc := LoadRedisConfig()
	if rc.Addr != "cache:6380" || !rc.TLS {
		t.Fatalf("unexpected redis config %+v", rc)
	}
	if NewRedisClient(RedisConfig{Enabled: false}) != nil {
		t.Fatal("disabled redis should yield a nil client")
	}
}
