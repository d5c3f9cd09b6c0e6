package customer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/shopkit/internal/config"
	"github.com/Additional-Code/shopkit/internal/entity"
	repo "github.com/Additional-Code/shopkit/internal/repository/customer"
	"github.com/Additional-Code/shopkit/pkg/errorbank"
)

type fixture struct {
	dir    string
	ledger string
	svc    *Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	ledger := filepath.Join(dir, "customers.csv")
	svc, err := NewService(Params{
		Repository: repo.NewRepository(),
		Config:     config.Config{Customers: config.Customers{LedgerFile: ledger}},
		Logger:     zap.NewNop(),
	})
	require.NoError(t, err)
	return fixture{dir: dir, ledger: ledger, svc: svc}
}

func (f fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (f fixture) ledgerContent(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(f.ledger)
	require.NoError(t, err)
	return string(data)
}

func TestImportIntoEmptyLedger(t *testing.T) {
	f := newFixture(t)
	src := f.write(t, "new.csv", "name,email\nAlice,a@x.com\nBob,b@x.com\nCarol,c@x.com\n")

	n, err := f.svc.Import(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 3, n)
	assert.Equal(t, "name,email\nAlice,a@x.com\nBob,b@x.com\nCarol,c@x.com\n", f.ledgerContent(t))
}

func TestImportDuplicatesWithinFileKeepLast(t *testing.T) {
	f := newFixture(t)
	src := f.write(t, "new.csv", "name,email\nAlice,a@x.com\nBob,b@x.com\nAlicia,a@x.com\n")

	n, err := f.svc.Import(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 3, n, "count reports rows read, not rows kept")
	assert.Equal(t, "name,email\nAlicia,a@x.com\nBob,b@x.com\n", f.ledgerContent(t))
}

func TestImportNewRowWins(t *testing.T) {
	f := newFixture(t)
	f.write(t, "customers.csv", "email,name\na@x.com,Old\nz@x.com,Zed\n")
	src := f.write(t, "new.csv", "email,name\na@x.com,New\n")

	n, err := f.svc.Import(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, "email,name\na@x.com,New\nz@x.com,Zed\n", f.ledgerContent(t))
}

func TestImportTwiceIsIdempotent(t *testing.T) {
	f := newFixture(t)
	src := f.write(t, "new.csv", "name,email\nAlice,a@x.com\nBob,b@x.com\n")
	ctx := context.Background()

	_, err := f.svc.Import(ctx, src)
	require.NoError(t, err)
	once := f.ledgerContent(t)

	_, err = f.svc.Import(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, once, f.ledgerContent(t))
}

func TestImportKeepsLedgerHeader(t *testing.T) {
	f := newFixture(t)
	f.write(t, "customers.csv", "name,email,city\nAlice,a@x.com,Oslo\n")
	src := f.write(t, "new.csv", "email,phone,name\nb@x.com,555,Bob\n")

	_, err := f.svc.Import(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, "name,email,city\nAlice,a@x.com,Oslo\nBob,b@x.com,\n", f.ledgerContent(t))
}

func TestImportErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Import(ctx, filepath.Join(f.dir, "nope.csv"))
	assert.True(t, errorbank.Is(err, errorbank.KindNotFound))

	noEmail := f.write(t, "noemail.csv", "name,phone\nAlice,1\n")
	_, err = f.svc.Import(ctx, noEmail)
	assert.True(t, errorbank.Is(err, errorbank.KindValidation))

	empty := f.write(t, "empty.csv", "")
	_, err = f.svc.Import(ctx, empty)
	assert.True(t, errorbank.Is(err, errorbank.KindValidation))

	overlong := f.write(t, "overlong.csv", "name,email\nAlice,a@x.com,EXTRA-DATA\n")
	_, err = f.svc.Import(ctx, overlong)
	assert.True(t, errorbank.Is(err, errorbank.KindValidation))

	_, statErr := os.Stat(f.ledger)
	assert.True(t, os.IsNotExist(statErr), "failed imports must not create the ledger")
}

func TestImportByteOrderMarkedFile(t *testing.T) {
	f := newFixture(t)
	src := f.write(t, "excel.csv", "\ufeffemail,name\na@x.com,Alice\n")

	n, err := f.svc.Import(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, "email,name\na@x.com,Alice\n", f.ledgerContent(t))
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dest := filepath.Join(f.dir, "out.csv")

	n, err := f.svc.Export(ctx, dest)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))

	content := "name,email\nAlice,a@x.com\nBob,b@x.com\n"
	f.write(t, "customers.csv", content)

	n, err = f.svc.Export(ctx, dest)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	missing, err := f.svc.Search(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, missing.Len())

	f.write(t, "customers.csv", "name,email\nAlice,a@x.com\nBob,b@x.com\nMalice,m@x.com\n")

	tests := []struct {
		query string
		want  []entity.Customer
	}{
		{"alice", []entity.Customer{{"Alice", "a@x.com"}, {"Malice", "m@x.com"}}},
		{"ALICE", []entity.Customer{{"Alice", "a@x.com"}, {"Malice", "m@x.com"}}},
		{"b@x", []entity.Customer{{"Bob", "b@x.com"}}},
		{"x.com", []entity.Customer{{"Alice", "a@x.com"}, {"Bob", "b@x.com"}, {"Malice", "m@x.com"}}},
		{"zed", []entity.Customer{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := f.svc.Search(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, []string{"name", "email"}, got.Header)
			assert.Equal(t, tt.want, got.Rows)
		})
	}
}

func TestSearchScenario(t *testing.T) {
	f := newFixture(t)
	f.write(t, "customers.csv", "name,email\nAlice,a@x.com\nBob,b@x.com\n")

	got, err := f.svc.Search(context.Background(), "aLiCe")
	require.NoError(t, err)
	assert.Equal(t, []entity.Customer{{"Alice", "a@x.com"}}, got.Rows)
}

func TestMerge(t *testing.T) {
	existing := &entity.CustomerTable{
		Header: []string{"email", "name"},
		Rows:   []entity.Customer{{"a@x.com", "A1"}, {"b@x.com", "B1"}},
	}
	incoming := &entity.CustomerTable{
		Header: []string{"email", "name"},
		Rows:   []entity.Customer{{"c@x.com", "C1"}, {"a@x.com", "A2"}, {"A@x.com", "Upper"}, {"c@x.com", "C2"}},
	}

	merged := Merge(existing, incoming)

	assert.Equal(t, []entity.Customer{
		{"a@x.com", "A2"},
		{"b@x.com", "B1"},
		{"c@x.com", "C2"},
		{"A@x.com", "Upper"},
	}, merged.Rows)
}
