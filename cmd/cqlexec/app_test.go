package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/cqltask/adapter/cql"
	"github.com/arloliu/cqltask/internal/secret"
	"github.com/arloliu/cqltask/test/testutil"
)

type fakeStore struct {
	passwords map[string]string
	service   string
}

func (s *fakeStore) Lookup(username string) (string, error) {
	p, ok := s.passwords[username]
	if !ok {
		return "", secret.ErrSecretNotFound
	}

	return p, nil
}

func (s *fakeStore) Set(username, password string) error {
	s.passwords[username] = password
	return nil
}

type harness struct {
	app       *app
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
	session   *testutil.MockSession
	connector *testutil.MockConnector
	store     *fakeStore
}

func newHarness(t *testing.T, stdin string) *harness {
	t.Helper()

	// Keep CQLTASK_* variables from the environment out of the tests.
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, "CQLTASK_") {
			t.Setenv(name, "")
		}
	}

	h := &harness{
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
		session: testutil.NewMockSession(),
		store:   &fakeStore{passwords: map[string]string{}},
	}
	h.connector = testutil.NewMockConnector(h.session)
	h.app = newApp(strings.NewReader(stdin), h.stdout, h.stderr)
	h.app.connectors = map[string]func() cql.Connector{
		"v1": func() cql.Connector { return h.connector },
		"v2": func() cql.Connector { return h.connector },
	}
	h.app.openStore = func(service string) (passwordStore, error) {
		h.store.service = service
		return h.store, nil
	}

	return h
}

func (h *harness) run(args ...string) error {
	return h.app.command().Run(context.Background(), append([]string{"cqlexec"}, args...))
}

func TestExecuteJSON(t *testing.T) {
	h := newHarness(t, "")
	h.session.SetIter(&testutil.MockIter{
		Rows:              []map[string]any{{"count": int64(1)}},
		Cols:              testutil.Columns("store", "shopping_cart", "count"),
		FirstPageWarnings: []string{"Aggregation query used without partition key"},
	})

	err := h.run("-c", "10.0.0.1", "-c", "10.0.0.2", "-p", "19042", "-k", "store",
		"-q", "SELECT count(*) FROM shopping_cart;")
	require.NoError(t, err)

	var doc struct {
		Success  bool             `json:"success"`
		Rows     []map[string]any `json:"rows"`
		Warnings []string         `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &doc))
	assert.True(t, doc.Success)
	assert.Len(t, doc.Rows, 1)
	assert.Equal(t, []string{"Aggregation query used without partition key"}, doc.Warnings)

	cfg := h.connector.LastConfig()
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.ContactPoints)
	assert.Equal(t, 19042, cfg.Port)
	assert.Equal(t, "store", cfg.Keyspace)
	assert.Equal(t, "SELECT count(*) FROM shopping_cart;", h.session.Queries()[0].Statement())
}

func TestExecuteQueryFileVerbatim(t *testing.T) {
	h := newHarness(t, "")
	stmt := "INSERT INTO store.shopping_cart (userid, item_count)\nVALUES ('4567', 20);\n"
	path := filepath.Join(t.TempDir(), "insert.cql")
	require.NoError(t, os.WriteFile(path, []byte(stmt), 0o600))

	require.NoError(t, h.run("-c", "127.0.0.1", "-f", path))
	assert.Equal(t, stmt, h.session.Queries()[0].Statement())
}

func TestExecuteQueryArguments(t *testing.T) {
	h := newHarness(t, "")
	require.ErrorIs(t, h.run("-c", "127.0.0.1"), errNoQuery)

	h = newHarness(t, "")
	require.ErrorIs(t, h.run("-c", "127.0.0.1", "-q", "SELECT 1", "-f", "x.cql"), errQueryAndFile)
	require.Zero(t, h.connector.Calls())
}

func TestExecuteTableFormatPrintsWarnings(t *testing.T) {
	h := newHarness(t, "")
	h.session.SetIter(&testutil.MockIter{
		Rows:              []map[string]any{{"userid": "9876"}},
		Cols:              testutil.Columns("store", "shopping_cart", "userid"),
		FirstPageWarnings: []string{"Aggregation query used without partition key"},
	})

	require.NoError(t, h.run("-c", "127.0.0.1", "-q", "SELECT userid FROM store.shopping_cart", "--format", "table"))
	assert.Contains(t, h.stdout.String(), "9876")
	assert.Contains(t, h.stdout.String(), "(1 row)")
	assert.Contains(t, h.stderr.String(), "Aggregation query used without partition key")
}

func TestExecuteConfigFileAndFlags(t *testing.T) {
	h := newHarness(t, "")
	path := filepath.Join(t.TempDir(), "cqlexec.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[cluster]
contact_points = ["from-file"]
keyspace = "file_ks"
consistency = "ONE"
driver = "v2"
`), 0o600))

	require.NoError(t, h.run("--config", path, "-k", "flag_ks", "-q", "SELECT 1"))

	cfg := h.connector.LastConfig()
	assert.Equal(t, []string{"from-file"}, cfg.ContactPoints)
	assert.Equal(t, "flag_ks", cfg.Keyspace)
	assert.Equal(t, cql.One, cfg.Consistency)
}

func TestExecuteInvalidConfig(t *testing.T) {
	h := newHarness(t, "")
	require.Error(t, h.run("-c", "127.0.0.1", "-q", "SELECT 1", "--driver", "v9"))
	require.Error(t, h.run("-c", "127.0.0.1", "-q", "SELECT 1", "--consistency", "MOST"))
	require.Zero(t, h.connector.Calls())
}

func TestExecuteKeyringPassword(t *testing.T) {
	h := newHarness(t, "")
	h.store.passwords["reader"] = "from-keyring"

	require.NoError(t, h.run("-c", "127.0.0.1", "-q", "SELECT 1",
		"--username", "reader", "--keyring-service", "cart"))

	assert.Equal(t, "cart", h.store.service)
	creds := h.connector.LastConfig().Credentials
	assert.Equal(t, "reader", creds.Username)
	assert.Equal(t, "from-keyring", creds.Password)
}

func TestExecuteKeyringMissingPassword(t *testing.T) {
	h := newHarness(t, "")

	err := h.run("-c", "127.0.0.1", "-q", "SELECT 1", "--username", "reader", "--keyring-service", "cart")
	require.ErrorIs(t, err, secret.ErrSecretNotFound)
	require.Zero(t, h.connector.Calls())
}

func TestExecuteConnectFailure(t *testing.T) {
	h := newHarness(t, "")
	h.connector.Err = errors.New("no hosts available")

	err := h.run("-c", "127.0.0.1", "-q", "SELECT 1")
	require.ErrorContains(t, err, "no hosts available")
	require.Empty(t, h.stdout.String())
}

func TestExecuteOutputFileXLSX(t *testing.T) {
	h := newHarness(t, "")
	h.session.SetIter(&testutil.MockIter{
		Rows: []map[string]any{{"userid": "9876"}},
		Cols: testutil.Columns("store", "shopping_cart", "userid"),
	})
	path := filepath.Join(t.TempDir(), "cart.xlsx")

	require.NoError(t, h.run("-c", "127.0.0.1", "-q", "SELECT userid FROM store.shopping_cart",
		"--format", "xlsx", "-o", path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
	assert.Empty(t, h.stdout.String())
}

func TestExecuteMetricsFile(t *testing.T) {
	h := newHarness(t, "")
	h.session.SetIter(&testutil.MockIter{Rows: []map[string]any{{"a": 1}, {"a": 2}}})
	path := filepath.Join(t.TempDir(), "metrics.prom")

	require.NoError(t, h.run("-c", "127.0.0.1", "-q", "SELECT a FROM t", "--metrics-file", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cqltask_query_total 1")
	assert.Contains(t, string(data), "cqltask_rows_returned_total 2")
}

func TestExecuteTrace(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, h.run("-c", "127.0.0.1", "-q", "SELECT 1", "--trace"))
	assert.Contains(t, h.stderr.String(), "cqltask.Execute")
}

func TestPasswordSet(t *testing.T) {
	h := newHarness(t, "s3cret\n")

	require.NoError(t, h.run("password", "set", "--username", "cassandra"))
	assert.Equal(t, "s3cret", h.store.passwords["cassandra"])
	assert.Equal(t, secret.DefaultService, h.store.service)
	assert.Contains(t, h.stdout.String(), "password stored for cassandra")
}

func TestPasswordSetErrors(t *testing.T) {
	h := newHarness(t, "")
	require.ErrorIs(t, h.run("password", "set", "--username", "cassandra"), errEmptyPassword)

	h = newHarness(t, "x\n")
	require.ErrorIs(t, h.run("password", "set"), errNoUsername)
}
