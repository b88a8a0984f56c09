package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
	"github.com/shandysiswandi/gokode/internal/pkg/instrument"
	"github.com/shandysiswandi/gokode/internal/verification/entity"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// requireDocker skips the test when no docker endpoint is reachable,
// since testcontainers panics instead of returning an error in that case.
func requireDocker(t *testing.T) {
	t.Helper()
	if os.Getenv("DOCKER_HOST") != "" || os.Getenv("TESTCONTAINERS_HOST_OVERRIDE") != "" {
		return
	}
	candidates := []string{"/var/run/docker.sock"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".docker", "run", "docker.sock"))
	}
	for _, sock := range candidates {
		if _, err := os.Stat(sock); err == nil {
			return
		}
	}
	t.Skip("docker unavailable: no DOCKER_HOST and no docker socket")
}

// TestRedisIntegration_Lifecycle runs the full record lifecycle against a
// real Redis so the Lua scripts are exercised outside the miniredis VM.
func TestRedisIntegration_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	requireDocker(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort(nat.Port("6379/tcp")).WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	connStr, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("ConnectionString() error = %v", err)
	}
	opts, err := goredis.ParseURL(connStr)
	if err != nil {
		t.Fatalf("ParseURL(%q) error = %v", connStr, err)
	}
	client := goredis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedis(client, instrument.NewNoop())

	rec := testRecord("digest-1")
	if err := s.Put(ctx, entity.ChannelEmail, "a@b.test", rec, 30*time.Second); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get(ctx, entity.ChannelEmail, "a@b.test")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Digest != rec.Digest {
		t.Errorf("Get() Digest = %q, want %q", got.Digest, rec.Digest)
	}

	for want := int32(1); want <= 4; want++ {
		n, err := s.Fail(ctx, entity.ChannelEmail, "a@b.test")
		if err != nil {
			t.Fatalf("Fail() error = %v", err)
		}
		if n != want {
			t.Errorf("Fail() = %d, want %d", n, want)
		}
	}

	ok, err := s.Consume(ctx, entity.ChannelEmail, "a@b.test", "wrong")
	if err != nil {
		t.Fatalf("Consume(wrong) error = %v", err)
	}
	if ok {
		t.Error("Consume(wrong) = true, want false")
	}

	ok, err = s.Consume(ctx, entity.ChannelEmail, "a@b.test", "digest-1")
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if !ok {
		t.Fatal("Consume() = false, want true")
	}

	if _, err := s.Get(ctx, entity.ChannelEmail, "a@b.test"); !errors.Is(err, goerror.ErrNotFound) {
		t.Errorf("Get() after consume error = %v, want %v", err, goerror.ErrNotFound)
	}
}
