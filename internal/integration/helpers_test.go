package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []http.Cookie) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, c := range cookies {
		req.AddCookie(&c)
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indeterministic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		return k == "timestamp" || k == "requestId" || k == "createdAt" ||
			k == "holdId" || k == "expiresAt" || k == "confirmationCode"
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func executeSQLFile(t testing.TB, db *pgxpool.Pool, path string) {
	t.Helper()

	sql, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = db.Exec(context.Background(), string(sql))
	require.NoError(t, err)
}

func flushAllCache(t testing.TB, client *redis.Client) {
	t.Helper()

	require.NoError(t, client.FlushAll(context.Background()).Err())
}

// authenticatedCookie commits a session carrying the given user id straight
// into the session store, bypassing any login surface.
func authenticatedCookie(t testing.TB, app *TestApp, userID int) http.Cookie {
	t.Helper()

	ctx, err := app.Sessions.Load(context.Background(), "")
	require.NoError(t, err)

	app.Sessions.Put(ctx, "userID", userID)

	token, _, err := app.Sessions.Commit(ctx)
	require.NoError(t, err)

	return http.Cookie{Name: app.Sessions.Cookie.Name, Value: token}
}

func sessionCookie(t testing.TB, app *TestApp, res *http.Response) http.Cookie {
	t.Helper()

	for _, c := range res.Cookies() {
		if c.Name == app.Sessions.Cookie.Name {
			return http.Cookie{Name: c.Name, Value: c.Value}
		}
	}

	t.Fatal("no session cookie in response")
	return http.Cookie{}
}

func resetState(t testing.TB, app *TestApp) {
	t.Helper()

	executeSQLFile(t, app.DB, "testdata/fixtures_down.sql")
	executeSQLFile(t, app.DB, "testdata/fixtures_up.sql")
	flushAllCache(t, app.RedisClient)
	app.Mailer.Reset()
}

func decodeBody(t testing.TB, body io.Reader, dst any) {
	t.Helper()

	require.NoError(t, json.NewDecoder(body).Decode(dst))
}

func countRows(t testing.TB, db *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(), fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n)
	require.NoError(t, err)

	return n
}
