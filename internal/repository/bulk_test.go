package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	query string
	args  []interface{}
}

type fakeExecer struct {
	calls []execCall
	err   error
}

func (f *fakeExecer) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, execCall{query: query, args: args})
	return rowsResult(len(args) / 2), nil
}

type rowsResult int64

func (r rowsResult) LastInsertId() (int64, error) { return 0, errors.New("unsupported") }
func (r rowsResult) RowsAffected() (int64, error) { return int64(r), nil }

func TestBulkInsert(t *testing.T) {
	t.Run("single statement with suffix", func(t *testing.T) {
		exec := &fakeExecer{}
		n, err := BulkInsert(context.Background(), exec, "marcas", []string{"codigo", "nombre"},
			[][]interface{}{{"M1", "Uno"}, {"M2", "Dos"}}, "ON CONFLICT (codigo) DO NOTHING")
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
		require.Len(t, exec.calls, 1)
		assert.Equal(t, "INSERT INTO marcas (codigo, nombre) VALUES ($1, $2), ($3, $4) ON CONFLICT (codigo) DO NOTHING", exec.calls[0].query)
		assert.Equal(t, []interface{}{"M1", "Uno", "M2", "Dos"}, exec.calls[0].args)
	})

	t.Run("chunks by batch size", func(t *testing.T) {
		rows := make([][]interface{}, BatchSize+5)
		for i := range rows {
			rows[i] = []interface{}{i, i}
		}
		exec := &fakeExecer{}
		n, err := BulkInsert(context.Background(), exec, "t", []string{"a", "b"}, rows, "")
		require.NoError(t, err)
		assert.EqualValues(t, BatchSize+5, n)
		require.Len(t, exec.calls, 2)
		assert.Len(t, exec.calls[1].args, 10)
		assert.True(t, strings.HasPrefix(exec.calls[1].query, "INSERT INTO t (a, b) VALUES ($1, $2), "))
	})

	t.Run("row width mismatch", func(t *testing.T) {
		exec := &fakeExecer{}
		_, err := BulkInsert(context.Background(), exec, "t", []string{"a", "b"}, [][]interface{}{{1}}, "")
		assert.ErrorContains(t, err, "row has 1 values, want 2")
		assert.Empty(t, exec.calls)
	})

	t.Run("exec error wrapped", func(t *testing.T) {
		exec := &fakeExecer{err: errors.New("boom")}
		_, err := BulkInsert(context.Background(), exec, "ventas", []string{"a"}, [][]interface{}{{1}}, "")
		assert.ErrorContains(t, err, "failed to insert into ventas: boom")
	})

	t.Run("no rows no statements", func(t *testing.T) {
		exec := &fakeExecer{}
		n, err := BulkInsert(context.Background(), exec, "t", []string{"a"}, nil, "")
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, exec.calls)
	})
}

func TestDedupeKeepsLastValueInFirstPosition(t *testing.T) {
	type kv struct{ k, v string }
	got := dedupe([]kv{{"a", "1"}, {"b", "2"}, {"a", "3"}}, func(r kv) string { return r.k })
	assert.Equal(t, []kv{{"a", "3"}, {"b", "2"}}, got)
}

func TestSaleRowsOneLinePerDocumentReference(t *testing.T) {
	sales := []domain.Sale{
		{Prefix: "FV", DocumentNumber: "100", Reference: "P1", WarehouseCode: "W1", Quantity: 2},
		{Prefix: "FV", DocumentNumber: "100", Reference: "P2", WarehouseCode: "W1", Quantity: 1},
		{Prefix: "FV", DocumentNumber: "100", Reference: "P1", WarehouseCode: "W2", Quantity: 3},
		{Prefix: "FE", DocumentNumber: "100", Reference: "P1", WarehouseCode: "W1", Quantity: 4},
	}

	rows := saleRows(sales)

	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Len(t, row, len(saleColumns))
	}
	assert.Equal(t, []interface{}{"FV", "100", "P1", "W2"}, rows[0][:4], "same line at another warehouse is not a new line")
	assert.Equal(t, 3.0, rows[0][5])
	assert.Equal(t, "P2", rows[1][2])
	assert.Equal(t, "FE", rows[2][0])
}
