package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lms-client/internal/app"
	"lms-client/internal/infra/memory"
	kvredis "lms-client/internal/infra/redis"
	"lms-client/internal/infra/postgres"
	pgmigrations "lms-client/internal/infra/postgres/migrations"
	"lms-client/internal/lmsapi"
	"lms-client/internal/session"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestAggregateAndArchiveEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	lms := newFakeLMS(t)
	defer lms.Close()

	api := lmsapi.New(lms.URL, 5*time.Second)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	store := kvredis.NewKVStore(redisClient, 0)

	provider := session.NewProvider(api, store)
	viewer, err := provider.Login(ctx, "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	current, token, err := provider.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.UserID != viewer.UserID {
		t.Fatalf("session mismatch: %+v vs %+v", current, viewer)
	}

	hints := app.NewHintCache(store)
	// r-hint is only discoverable through the locally remembered ID.
	if err := hints.Record(ctx, "a1", "r-hint"); err != nil {
		t.Fatalf("record hint: %v", err)
	}

	agg := app.NewAggregator(api, hints, memory.NewResultCache(time.Minute))
	results, soft, err := agg.Aggregate(ctx, current, token)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(soft) != 0 {
		t.Fatalf("expected clean pass, got soft errors %v", soft)
	}
	if len(results) != 2 || results[0].ResultID != "r-bulk" || results[1].ResultID != "r-hint" {
		t.Fatalf("expected [r-bulk r-hint] by date, got %+v", results)
	}

	runMigrations(t, ctx, pgURL)
	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	archive := postgres.NewArchive(pool)
	id, err := archive.Save(ctx, current, time.Now(), results)
	if err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	records, err := archive.List(ctx, current.UserID)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(records) != 1 || records[0].ID != id || records[0].ResultCount != 2 {
		t.Fatalf("unexpected snapshot records: %+v", records)
	}
	loaded, err := archive.Load(ctx, id)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if len(loaded) != 2 || loaded[0].AssessmentTitle != "Quiz 1" {
		t.Fatalf("unexpected snapshot rows: %+v", loaded)
	}
}

// newFakeLMS serves the fixed API contract: login, enrolled courses (in the
// wrapped envelope), assessments, bulk results, and a single hint-only
// result.
func newFakeLMS(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"tok-1","user":{"userId":"u1","name":"Alice","role":"Student"}}`))
	})
	mux.HandleFunc("/api/Courses/enrolled", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"$id":"1","$values":[{"courseId":"c1","title":"Algebra"}]}`))
	})
	mux.HandleFunc("/api/Assessments/course/c1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"assessmentId":"a1","courseId":"c1","title":"Quiz 1","maxScore":10}]`))
	})
	mux.HandleFunc("/api/Results/assessment/a1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"resultId":"r-bulk","assessmentId":"a1","userId":"U1","score":8,"attemptDate":"2024-03-01T12:00:00Z"}]`))
	})
	mux.HandleFunc("/api/Results/r-hint", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resultId":"r-hint","assessmentId":"a1","userId":"u1","score":6,"attemptDate":"2024-02-01T12:00:00Z"}`))
	})
	return httptest.NewServer(mux)
}

func runMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "lms", "POSTGRES_PASSWORD": "lmspass", "POSTGRES_DB": "lmsdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://lms:lmspass@%s:%s/lmsdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
