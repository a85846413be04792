package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
)

const csvContentType = "text/csv"

// RunExporter writes the alerts and recommendations of a run as CSV files
// under exports/<fecha>/.
type RunExporter struct {
	store ObjectStorage
}

func NewRunExporter(store ObjectStorage) *RunExporter {
	return &RunExporter{store: store}
}

// ExportKey is the object key of one export file.
func ExportKey(date time.Time, name string) string {
	return fmt.Sprintf("exports/%s/%s.csv", date.Format(domain.DateLayout), name)
}

func (e *RunExporter) Export(ctx context.Context, date time.Time, alerts []domain.Alert, transfers []domain.TransferRecommendation, purchases []domain.PurchaseRecommendation) ([]string, error) {
	files := []struct {
		name string
		rows [][]string
	}{
		{"traslados", transferRows(transfers)},
		{"compras", purchaseRows(purchases)},
		{"alertas", alertRows(alerts)},
	}

	keys := make([]string, 0, len(files))
	for _, f := range files {
		payload, err := encodeCSV(f.rows)
		if err != nil {
			return keys, fmt.Errorf("encode %s: %w", f.name, err)
		}
		key := ExportKey(date, f.name)
		if err := e.store.UploadObject(ctx, key, payload, csvContentType); err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func encodeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func transferRows(transfers []domain.TransferRecommendation) [][]string {
	rows := [][]string{{"referencia", "bodega_origen", "bodega_destino", "regional_destino",
		"cantidad_sugerida", "dias_inv_origen", "dias_inv_destino", "prioridad"}}
	for _, t := range transfers {
		rows = append(rows, []string{
			t.Reference, t.Origin, t.Destination, t.DestinationRegion,
			formatFloat(t.Quantity), formatOptional(t.OriginDays), formatOptional(t.DestinationDays),
			string(t.Priority),
		})
	}
	return rows
}

func purchaseRows(purchases []domain.PurchaseRecommendation) [][]string {
	rows := [][]string{{"referencia", "marca_codigo", "stock_actual_red", "cantidad_sugerida",
		"valor_compra_estimado", "fecha_sugerida_pedido", "fecha_estimada_llegada", "prioridad"}}
	for _, p := range purchases {
		rows = append(rows, []string{
			p.Reference, p.BrandCode, formatFloat(p.NetworkStock), formatFloat(p.Quantity),
			p.EstimatedValue.StringFixed(2),
			p.OrderDate.Format(domain.DateLayout), p.ExpectedArrival.Format(domain.DateLayout),
			string(p.Priority),
		})
	}
	return rows
}

func alertRows(alerts []domain.Alert) [][]string {
	rows := [][]string{{"tipo_alerta", "nivel", "referencia", "bodega_codigo", "stock_actual",
		"dias_inventario", "mensaje"}}
	for _, a := range alerts {
		rows = append(rows, []string{
			string(a.Type), string(a.Level), a.Reference, a.WarehouseCode,
			formatFloat(a.Stock), formatOptional(a.DaysOfInventory), a.Message,
		})
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
