package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStorage) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	return nil, nil
}

func (m *memoryStorage) DownloadObject(ctx context.Context, key, destPath string) error {
	return nil
}

func (m *memoryStorage) UploadObject(ctx context.Context, key string, data []byte, contentType string) error {
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func TestRunExporter(t *testing.T) {
	date := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	days := 1.0
	store := newMemoryStorage()

	keys, err := NewRunExporter(store).Export(context.Background(), date,
		[]domain.Alert{{Type: domain.AlertStockCritical, Level: domain.LevelCritical, Reference: "P1",
			WarehouseCode: "W1", Stock: 10, DaysOfInventory: &days, Message: "Stock para 1 días"}},
		[]domain.TransferRecommendation{{Reference: "P1", Origin: "W2", Destination: "W1",
			DestinationRegion: "ANTIOQUIA", Quantity: 50, DestinationDays: &days, Priority: domain.PriorityUrgent}},
		[]domain.PurchaseRecommendation{{Reference: "P1", BrandCode: "ACME", Quantity: 615,
			EstimatedValue: decimal.RequireFromString("7380"), OrderDate: date,
			ExpectedArrival: date.AddDate(0, 0, 25), Priority: domain.PriorityUrgent}},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"exports/2024-06-30/traslados.csv",
		"exports/2024-06-30/compras.csv",
		"exports/2024-06-30/alertas.csv",
	}, keys)

	rows, err := csv.NewReader(bytes.NewReader(store.objects[keys[0]])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"P1", "W2", "W1", "ANTIOQUIA", "50", "", "1.00", "URGENTE"}, rows[1])

	rows, err = csv.NewReader(bytes.NewReader(store.objects[keys[1]])).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "7380.00", rows[1][4])
	assert.Equal(t, "2024-07-25", rows[1][6])
	assert.Equal(t, csvContentType, store.types[keys[1]])
}

func TestSplitEndpoint(t *testing.T) {
	host, secure := splitEndpoint("https://s3.example.com", false)
	assert.Equal(t, "s3.example.com", host)
	assert.True(t, secure)

	host, secure = splitEndpoint("http://minio:9000", true)
	assert.Equal(t, "minio:9000", host)
	assert.False(t, secure)

	host, secure = splitEndpoint("minio:9000", true)
	assert.Equal(t, "minio:9000", host)
	assert.True(t, secure)
}
