package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

var errMissingValue = errors.New("missing value")

// header maps normalized column names to record positions.
type header map[string]int

// newHeader normalizes the column names and resolves the collector's short
// names (REFER, BODEGA, CANTID...) through aliases.
func newHeader(columns []string, aliases map[string]string) header {
	h := make(header, len(columns))
	for i, col := range columns {
		name := normalizeColumn(col)
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	return h
}

func normalizeColumn(col string) string {
	col = strings.ToLower(strings.TrimSpace(col))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(col)
}

func (h header) require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if _, ok := h[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// row reads typed values from one record.
type row struct {
	h      header
	record []string
}

func (r row) str(col string) string {
	i, ok := r.h[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r row) required(col string) (string, error) {
	v := r.str(col)
	if v == "" {
		return "", fmt.Errorf("%s: %w", col, errMissingValue)
	}
	return v, nil
}

// number normalizes thousands and decimal separators: "1.234,5" and
// "1,234.5" both read as 1234.5, "12,5" as 12.5.
func number(v string) string {
	comma, dot := strings.LastIndex(v, ","), strings.LastIndex(v, ".")
	if comma > dot {
		return strings.Replace(strings.ReplaceAll(v, ".", ""), ",", ".", 1)
	}
	return strings.ReplaceAll(v, ",", "")
}

func (r row) float(col string) (float64, error) {
	v := r.str(col)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(number(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", col, v)
	}
	return f, nil
}

func (r row) decimal(col string) (decimal.Decimal, error) {
	v := r.str(col)
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(number(v))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid number %q", col, v)
	}
	return d, nil
}

func (r row) int(col string, def int) (int, error) {
	v := r.str(col)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(number(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", col, v)
	}
	return int(f), nil
}

func (r row) bool(col string, def bool) (bool, error) {
	switch strings.ToLower(r.str(col)) {
	case "":
		return def, nil
	case "1", "true", "t", "si", "sí", "s", "x", "yes", "y":
		return true, nil
	case "0", "false", "f", "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("%s: invalid boolean %q", col, r.str(col))
	}
}

var dateLayouts = []string{
	domain.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2006/01/02",
}

func (r row) date(col string) (time.Time, error) {
	v, err := r.required(col)
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return domain.TruncateDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: invalid date %q", col, v)
}

// parser describes how one kind of feed file maps to domain rows.
type parser[T any] struct {
	aliases  map[string]string
	required []string
	parse    func(r row) (T, error)
}

var warehouseTypeParser = parser[domain.WarehouseType]{
	aliases:  map[string]string{"tipo": "nombre"},
	required: []string{"nombre"},
	parse: func(r row) (domain.WarehouseType, error) {
		var (
			t   domain.WarehouseType
			err error
		)
		if t.Name, err = r.required("nombre"); err != nil {
			return t, err
		}
		if t.IncludeInSales, err = r.bool("incluir_en_analisis_ventas", t.Name == domain.WarehouseTypeSales); err != nil {
			return t, err
		}
		if t.IncludeInInventory, err = r.bool("incluir_en_analisis_inventario", true); err != nil {
			return t, err
		}
		t.Description = r.str("descripcion")
		return t, nil
	},
}

var warehouseParser = parser[domain.Warehouse]{
	aliases: map[string]string{
		"bodega":          "codigo",
		"bodega_codigo":   "codigo",
		"nombre_bodega":   "nombre",
		"tipo_almacen":    "tipo",
		"region":          "regional",
		"cedi":            "es_cedi",
		"centro_distrib":  "es_cedi",
		"estado":          "activo",
		"nombre_regional": "regional",
	},
	required: []string{"codigo"},
	parse: func(r row) (domain.Warehouse, error) {
		var (
			w   domain.Warehouse
			err error
		)
		if w.Code, err = r.required("codigo"); err != nil {
			return w, err
		}
		w.Name = r.str("nombre")
		if w.Name == "" {
			w.Name = w.Code
		}
		w.Type = r.str("tipo")
		if w.Type == "" {
			w.Type = domain.WarehouseTypeSales
		}
		w.Region = r.str("regional")
		if w.IsDistributionCenter, err = r.bool("es_cedi", false); err != nil {
			return w, err
		}
		if w.Active, err = r.bool("activo", true); err != nil {
			return w, err
		}
		return w, nil
	},
}

var brandParser = parser[domain.Brand]{
	aliases: map[string]string{
		"marca":             "codigo",
		"marca_codigo":      "codigo",
		"nombre_marca":      "nombre",
		"periodicidad":      "periodicidad_compra_dias",
		"dias_cobertura":    "dias_cobertura_stock",
		"lead_time":         "lead_time_proveedor",
		"lead_time_cedi":    "lead_time_a_cedi",
		"clasificacion_abc": "clasificacion",
	},
	required: []string{"codigo"},
	parse: func(r row) (domain.Brand, error) {
		var (
			b   domain.Brand
			err error
		)
		if b.Code, err = r.required("codigo"); err != nil {
			return b, err
		}
		b.Name = r.str("nombre")
		if b.Name == "" {
			b.Name = b.Code
		}
		b.Category = domain.Category(strings.ToUpper(r.str("categoria")))
		if b.Category == "" {
			b.Category = domain.CategoryOthers
		}
		b.Classification = domain.Classification(strings.ToUpper(r.str("clasificacion")))
		if b.Classification == "" {
			b.Classification = domain.ClassC
		}
		if b.PurchaseCycleDays, err = r.int("periodicidad_compra_dias", 30); err != nil {
			return b, err
		}
		if b.CoverageDays, err = r.int("dias_cobertura_stock", 30); err != nil {
			return b, err
		}
		if b.SupplierLeadTime, err = r.int("lead_time_proveedor", 0); err != nil {
			return b, err
		}
		if b.LeadTimeToCEDI, err = r.int("lead_time_a_cedi", 15); err != nil {
			return b, err
		}
		return b, nil
	},
}

var productParser = parser[domain.Product]{
	aliases: map[string]string{
		"refer":  "referencia",
		"nomref": "nombre",
		"marca":  "marca_codigo",
	},
	required: []string{"referencia"},
	parse: func(r row) (domain.Product, error) {
		var (
			p   domain.Product
			err error
		)
		if p.Reference, err = r.required("referencia"); err != nil {
			return p, err
		}
		p.Name = r.str("nombre")
		p.BrandCode = r.str("marca_codigo")
		if p.Active, err = r.bool("activo", true); err != nil {
			return p, err
		}
		return p, nil
	},
}

var saleParser = parser[domain.Sale]{
	aliases: map[string]string{
		"numdoc": "numero_documento",
		"bodega": "bodega_codigo",
		"refer":  "referencia",
		"cantid": "cantidad",
		"valund": "valor_unitario",
		"valtot": "valor_total",
		"vcosto": "costo",
		"valuti": "utilidad",
	},
	required: []string{"prefijo", "numero_documento", "referencia", "bodega_codigo", "fecha", "cantidad"},
	parse: func(r row) (domain.Sale, error) {
		var (
			s   domain.Sale
			err error
		)
		keys := []struct {
			col string
			dst *string
		}{
			{"prefijo", &s.Prefix},
			{"numero_documento", &s.DocumentNumber},
			{"referencia", &s.Reference},
			{"bodega_codigo", &s.WarehouseCode},
		}
		for _, k := range keys {
			if *k.dst, err = r.required(k.col); err != nil {
				return s, err
			}
		}
		if s.Date, err = r.date("fecha"); err != nil {
			return s, err
		}
		if s.Quantity, err = r.float("cantidad"); err != nil {
			return s, err
		}
		amounts := []struct {
			col string
			dst *decimal.Decimal
		}{
			{"valor_unitario", &s.UnitValue},
			{"valor_total", &s.TotalValue},
			{"costo", &s.Cost},
			{"utilidad", &s.Profit},
		}
		for _, a := range amounts {
			if *a.dst, err = r.decimal(a.col); err != nil {
				return s, err
			}
		}
		return s, nil
	},
}

// snapshotParser builds the parser of one inventario_<date> file.
func snapshotParser(date time.Time) parser[domain.InventorySnapshot] {
	return parser[domain.InventorySnapshot]{
		aliases: map[string]string{
			"bodega": "bodega_codigo",
			"refer":  "referencia",
			"vcosto": "valor_costo",
		},
		required: []string{"bodega_codigo", "referencia", "cantidad"},
		parse: func(r row) (domain.InventorySnapshot, error) {
			s := domain.InventorySnapshot{SnapshotDate: date}
			var err error
			if s.WarehouseCode, err = r.required("bodega_codigo"); err != nil {
				return s, err
			}
			if s.Reference, err = r.required("referencia"); err != nil {
				return s, err
			}
			if s.Quantity, err = r.float("cantidad"); err != nil {
				return s, err
			}
			if s.UnitCost, err = r.decimal("valor_costo"); err != nil {
				return s, err
			}
			return s, nil
		},
	}
}

// RowError describes a record that could not be parsed.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// parseFile reads every record of path. Records that fail to parse are
// returned as RowErrors and left out; a missing header column fails the file.
func parseFile[T any](path string, p parser[T]) ([]T, []RowError, error) {
	var (
		h       header
		out     []T
		skipped []RowError
	)
	err := readRecords(path, func(line int, record []string) error {
		if h == nil {
			h = newHeader(record, p.aliases)
			return h.require(p.required...)
		}
		if blank(record) {
			return nil
		}
		v, err := p.parse(row{h: h, record: record})
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Err: err})
			return nil
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if h == nil {
		return nil, nil, fmt.Errorf("%s: empty file", path)
	}
	return out, skipped, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
