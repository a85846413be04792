package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestNumber(t *testing.T) {
	tests := map[string]string{
		"12":       "12",
		"12.5":     "12.5",
		"12,5":     "12.5",
		"1,234.5":  "1234.5",
		"1.234,5":  "1234.5",
		"-3,25":    "-3.25",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, number(in))
		})
	}
}

func TestRowBool(t *testing.T) {
	h := newHeader([]string{"flag"}, nil)
	tests := []struct {
		value string
		def   bool
		want  bool
		err   bool
	}{
		{"", true, true, false},
		{"", false, false, false},
		{"SI", false, true, false},
		{"x", false, true, false},
		{"1", false, true, false},
		{"no", true, false, false},
		{"0", true, false, false},
		{"quizas", true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := row{h: h, record: []string{tt.value}}.bool("flag", tt.def)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSalesWithCollectorColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ventas.csv", "\ufeffPREFIJO,NUMDOC,FECHA,BODEGA,REFER,CANTID,VALUND,VALTOT,VCOSTO,VALUTI\n"+
		"FV,100,2024-03-01,B01,R1,2,10.50,21.00,15,6\n"+
		",,,,,,,,,\n"+
		"FV,101,01/03/2024,B01,R2,1,5,5,3,2\n"+
		"FV,102,2024-03-01,B01,,1,5,5,3,2\n"+
		"FV,103,ayer,B01,R3,1,5,5,3,2\n")

	sales, skipped, err := parseFile(path, saleParser)
	require.NoError(t, err)
	require.Len(t, sales, 2)

	first := sales[0]
	assert.Equal(t, "FV", first.Prefix)
	assert.Equal(t, "100", first.DocumentNumber)
	assert.Equal(t, "B01", first.WarehouseCode)
	assert.Equal(t, "R1", first.Reference)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, 2.0, first.Quantity)
	assert.True(t, decimal.RequireFromString("10.50").Equal(first.UnitValue))
	assert.True(t, decimal.NewFromInt(21).Equal(first.TotalValue))
	assert.True(t, decimal.NewFromInt(15).Equal(first.Cost))
	assert.True(t, decimal.NewFromInt(6).Equal(first.Profit))

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), sales[1].Date)

	require.Len(t, skipped, 2)
	assert.Equal(t, 5, skipped[0].Line)
	assert.ErrorIs(t, skipped[0].Err, errMissingValue)
	assert.Equal(t, 6, skipped[1].Line)
	assert.Contains(t, skipped[1].Error(), "invalid date")
}

func TestParseFileMissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ventas.csv", "prefijo,referencia\nFV,R1\n")

	_, _, err := parseFile(path, saleParser)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "numero_documento")
}

func TestParseFileEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "marcas.csv", "")

	_, _, err := parseFile(path, brandParser)
	assert.Error(t, err)
}

func TestParseSemicolonSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "inventario_2024-03-01.csv",
		"bodega;referencia;cantidad;vcosto\nB01;R1;12,5;1.200,75\nB02;R1;0;0\n")
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	rows, skipped, err := parseFile(path, snapshotParser(date))
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, rows, 2)
	assert.Equal(t, "B01", rows[0].WarehouseCode)
	assert.Equal(t, "R1", rows[0].Reference)
	assert.Equal(t, 12.5, rows[0].Quantity)
	assert.True(t, decimal.RequireFromString("1200.75").Equal(rows[0].UnitCost))
	assert.Equal(t, date, rows[1].SnapshotDate)
}

func TestParseReferenceDefaults(t *testing.T) {
	dir := t.TempDir()

	t.Run("warehouses", func(t *testing.T) {
		path := writeFile(t, dir, "almacenes.csv", "codigo,nombre,tipo,regional,es_cedi\nB01,Centro,,Norte,\nCEDI,,Reserva,,si\n")
		rows, skipped, err := parseFile(path, warehouseParser)
		require.NoError(t, err)
		assert.Empty(t, skipped)
		assert.Equal(t, []domain.Warehouse{
			{Code: "B01", Name: "Centro", Type: domain.WarehouseTypeSales, Region: "Norte", Active: true},
			{Code: "CEDI", Name: "CEDI", Type: "Reserva", IsDistributionCenter: true, Active: true},
		}, rows)
	})

	t.Run("brands", func(t *testing.T) {
		path := writeFile(t, dir, "marcas.csv", "codigo,categoria,clasificacion,lead_time_a_cedi\nM1,principal,a,20\nM2,,,\n")
		rows, _, err := parseFile(path, brandParser)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, domain.Brand{
			Code: "M1", Name: "M1", Category: domain.CategoryPrincipal, Classification: domain.ClassA,
			PurchaseCycleDays: 30, CoverageDays: 30, LeadTimeToCEDI: 20,
		}, rows[0])
		assert.Equal(t, domain.CategoryOthers, rows[1].Category)
		assert.Equal(t, domain.ClassC, rows[1].Classification)
		assert.Equal(t, 15, rows[1].LeadTimeToCEDI)
	})

	t.Run("products", func(t *testing.T) {
		path := writeFile(t, dir, "productos.csv", "REFER,NOMREF,MARCA\nR1,Lente,M1\nR2,Montura,\n")
		rows, _, err := parseFile(path, productParser)
		require.NoError(t, err)
		assert.Equal(t, []domain.Product{
			{Reference: "R1", Name: "Lente", BrandCode: "M1", Active: true},
			{Reference: "R2", Name: "Montura", Active: true},
		}, rows)
	})

	t.Run("warehouse types", func(t *testing.T) {
		path := writeFile(t, dir, "tipos_almacen.csv", "nombre,descripcion\nVenta,Punto de venta\nFeria,\n")
		rows, _, err := parseFile(path, warehouseTypeParser)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.True(t, rows[0].IncludeInSales)
		assert.False(t, rows[1].IncludeInSales)
		assert.True(t, rows[1].IncludeInInventory)
	})
}

func TestParseXLSX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "productos.xlsx")

	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	require.NoError(t, book.SetSheetRow(sheet, "A1", &[]interface{}{"referencia", "nombre", "marca_codigo"}))
	require.NoError(t, book.SetSheetRow(sheet, "A2", &[]interface{}{"R1", "Lente", "M1"}))
	require.NoError(t, book.SetSheetRow(sheet, "A3", &[]interface{}{"R2", "Montura", "M2"}))
	require.NoError(t, book.SaveAs(path))
	require.NoError(t, book.Close())

	rows, skipped, err := parseFile(path, productParser)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, rows, 2)
	assert.Equal(t, "R2", rows[1].Reference)
	assert.Equal(t, "M2", rows[1].BrandCode)
}
