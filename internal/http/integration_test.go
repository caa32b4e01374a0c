package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userauth/internal/auth"
	"userauth/internal/config"
	"userauth/internal/db"
	"userauth/internal/password"
	"userauth/internal/user"
)

// newPostgresEnv runs the router against a real database. Skipped when
// TEST_DATABASE_URL is unset or unreachable.
func newPostgresEnv(t *testing.T) (*testEnv, *gorm.DB) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	gdb, err := db.Connect(dsn)
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := sqlDB.Ping(); err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	require.NoError(t, db.Migrate(dsn))
	require.NoError(t, gdb.Exec(`DELETE FROM users`).Error)

	hasher := password.NewBcryptHasher(bcrypt.MinCost)
	store := user.NewStore(gdb, hasher)
	jwtSvc := auth.NewJWT("integration-secret", time.Hour)
	authSvc := auth.NewService(store, hasher, jwtSvc)

	srv := newServer(t, NewRouter(config.Config{}, Deps{Users: store, Auth: authSvc, JWT: jwtSvc}))
	return &testEnv{srv: srv, authSvc: authSvc}, gdb
}

func countUsers(t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&user.User{}).Count(&n).Error)
	return n
}

func TestPostgres_CreateAndLogin(t *testing.T) {
	env, gdb := newPostgresEnv(t)

	res, body := env.post(t, "/users/created", gabriel)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	assert.True(t, env.authSvc.ValidatePassword(gabriel["password"], body["password"].(string)))

	res, body = env.post(t, "/users/created", map[string]string{"email": "x@mail.com", "password": "1234"})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Equal(t, "User validation failed: name: Path `name` is required.", body["error"])

	res, body = env.post(t, "/users/created", gabriel)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Equal(t, "User validation failed: email: already exists in the database", body["error"])
	assert.Equal(t, int64(1), countUsers(t, gdb))

	res, body = env.post(t, "/users", map[string]string{"email": gabriel["email"], "password": gabriel["password"]})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, body["token"])

	res, _ = env.post(t, "/users", map[string]string{"email": "some-email@mail.com", "password": "1234"})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = env.post(t, "/users", map[string]string{"email": gabriel["email"], "password": "different password"})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestPostgres_ConcurrentCreateSameEmail(t *testing.T) {
	env, gdb := newPostgresEnv(t)

	payload, err := json.Marshal(gabriel)
	require.NoError(t, err)

	const n = 8
	statuses := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := http.Post(env.srv.URL+"/users/created", "application/json", bytes.NewReader(payload))
			if err != nil {
				return
			}
			res.Body.Close()
			statuses[i] = res.StatusCode
		}(i)
	}
	wg.Wait()

	created := 0
	for _, s := range statuses {
		switch s {
		case http.StatusCreated:
			created++
		default:
			assert.Equal(t, http.StatusUnprocessableEntity, s)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, int64(1), countUsers(t, gdb))
}
