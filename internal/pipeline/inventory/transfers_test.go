package inventory

import (
	"testing"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTransfersBoundedBySurplus(t *testing.T) {
	refs := testRefs(t)
	policy := DefaultPolicy()

	metrics := []domain.ProductWarehouseMetric{
		metricFor(t, refs, policy, "P1", "W1", 10, 300),
		metricFor(t, refs, policy, "P1", "W2", 500, 450),
	}

	plan := GenerateTransfers(calcDate, metrics, refs, policy)

	require.Len(t, plan.Transfers, 1)
	tr := plan.Transfers[0]
	assert.Equal(t, "W2", tr.Origin)
	assert.Equal(t, "W1", tr.Destination)
	assert.Equal(t, "ANTIOQUIA", tr.DestinationRegion)
	assert.Equal(t, 50.0, tr.Quantity, "W2 holds 500 against a max of 450")
	assert.Equal(t, domain.PriorityUrgent, tr.Priority)
	assert.Equal(t, domain.StatusPending, tr.Status)
	assert.InDelta(t, 160.0, plan.Unmet[metricKey{"P1", "W1"}], 1e-9)
}

func TestGenerateTransfersSharesDonorAcrossNeeds(t *testing.T) {
	refs := testRefs(t)
	policy := DefaultPolicy()

	metrics := []domain.ProductWarehouseMetric{
		metricFor(t, refs, policy, "P1", "W1", 10, 300),
		metricFor(t, refs, policy, "P1", "W3", 20, 300),
		metricFor(t, refs, policy, "P1", "W2", 800, 450),
	}

	plan := GenerateTransfers(calcDate, metrics, refs, policy)

	require.Len(t, plan.Transfers, 2)
	assert.Equal(t, "W1", plan.Transfers[0].Destination, "fewest days served first")
	assert.Equal(t, 210.0, plan.Transfers[0].Quantity)
	assert.Equal(t, "W3", plan.Transfers[1].Destination)
	assert.Equal(t, 140.0, plan.Transfers[1].Quantity)

	var given float64
	for _, tr := range plan.Transfers {
		given += tr.Quantity
	}
	assert.Equal(t, 350.0, given, "donor never gives more than its surplus")
	assert.InDelta(t, 60.0, plan.Unmet[metricKey{"P1", "W3"}], 1e-9)
	_, w1Short := plan.Unmet[metricKey{"P1", "W1"}]
	assert.False(t, w1Short)
}

func TestGenerateTransfersFromReserveWarehouse(t *testing.T) {
	refs := testRefs(t)
	policy := DefaultPolicy()

	metrics := []domain.ProductWarehouseMetric{
		metricFor(t, refs, policy, "P1", "W1", 10, 300),
		metricFor(t, refs, policy, "P1", "R1", 1000, 0),
	}

	plan := GenerateTransfers(calcDate, metrics, refs, policy)

	require.Len(t, plan.Transfers, 1)
	assert.Equal(t, "R1", plan.Transfers[0].Origin)
	assert.Equal(t, 210.0, plan.Transfers[0].Quantity)
	assert.Empty(t, plan.Unmet)
}

func TestGenerateTransfersIgnoresNonSalesNeeds(t *testing.T) {
	refs := testRefs(t)
	policy := DefaultPolicy()

	metrics := []domain.ProductWarehouseMetric{
		metricFor(t, refs, policy, "P1", "R1", 10, 300),
		metricFor(t, refs, policy, "P1", "W2", 800, 450),
	}

	plan := GenerateTransfers(calcDate, metrics, refs, policy)

	assert.Empty(t, plan.Transfers)
	assert.Empty(t, plan.Unmet)
}

func TestGenerateTransfersRespectsReceiverCeiling(t *testing.T) {
	refs := testRefs(t)
	policy := DefaultPolicy()
	policy.TransferBufferDays = 30

	// W2 holds 33.3 days; with a 30 day buffer the receiver may reach at most 3.3 days.
	metrics := []domain.ProductWarehouseMetric{
		metricFor(t, refs, policy, "P1", "W1", 10, 300),
		metricFor(t, refs, policy, "P1", "W2", 500, 450),
	}

	plan := GenerateTransfers(calcDate, metrics, refs, policy)

	require.Len(t, plan.Transfers, 1)
	assert.Equal(t, 23.0, plan.Transfers[0].Quantity)
}

func TestTransferPriority(t *testing.T) {
	p := DefaultPolicy()
	principal := domain.Brand{Category: domain.CategoryPrincipal}
	others := domain.Brand{Category: domain.CategoryOthers}

	tests := []struct {
		name  string
		days  float64
		brand domain.Brand
		rank  int
		want  domain.Priority
	}{
		{"critical top rank", 2, principal, 1, domain.PriorityUrgent},
		{"critical second rank", 2, principal, 2, domain.PriorityHigh},
		{"critical others", 2, others, 6, domain.PriorityMedium},
		{"low principal", 5, principal, 3, domain.PriorityHigh},
		{"low others", 5, others, 4, domain.PriorityMedium},
		{"exactly low", 7, principal, 1, domain.PriorityLow},
		{"comfortable", 12, principal, 1, domain.PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.transferPriority(tt.days, tt.brand, tt.rank))
		})
	}
}

func TestSurplusModes(t *testing.T) {
	m := domain.ProductWarehouseMetric{Stock: 500, ReorderPoint: 220, MaxStock: 450}

	p := DefaultPolicy()
	assert.Equal(t, 50.0, p.SurplusOf(m))

	p.Surplus = SurplusAboveReorder
	p.SurplusUnits = 10
	assert.Equal(t, 270.0, p.SurplusOf(m))

	m.Stock = 100
	assert.Equal(t, 0.0, p.SurplusOf(m))
}

func TestSurplusNeverBelowReorderPoint(t *testing.T) {
	// Long lead times push punto_reorden above stock_maximo.
	m := domain.ProductWarehouseMetric{Stock: 500, ReorderPoint: 370, MaxStock: 300}

	assert.Equal(t, 130.0, DefaultPolicy().SurplusOf(m))
}

func TestGenerateTransfersKeepsDonorAboveReorderPoint(t *testing.T) {
	brands := append(testBrands(), domain.Brand{
		Code: "LONG", Category: domain.CategoryPrincipal, Classification: domain.ClassA,
		CoverageDays: 30, SupplierLeadTime: 10, LeadTimeToCEDI: 30,
	})
	products := append(testProducts(), domain.Product{Reference: "P6", BrandCode: "LONG", Active: true})
	policy := DefaultPolicy()
	refs := NewReferenceData(testWarehouses(), testWarehouseTypes(), brands, products, nil, policy.DefaultBrand)

	donor := metricFor(t, refs, policy, "P6", "W2", 500, 300)
	require.InDelta(t, 370.0, donor.ReorderPoint, 1e-9)
	require.InDelta(t, 300.0, donor.MaxStock, 1e-9)

	metrics := []domain.ProductWarehouseMetric{
		metricFor(t, refs, policy, "P6", "W1", 10, 300),
		donor,
	}

	plan := GenerateTransfers(calcDate, metrics, refs, policy)

	require.Len(t, plan.Transfers, 1)
	assert.Equal(t, 130.0, plan.Transfers[0].Quantity)
	assert.GreaterOrEqual(t, donor.Stock-plan.Transfers[0].Quantity, donor.ReorderPoint)
}

func TestGenerateTransfersDonorMinDays(t *testing.T) {
	refs := testRefs(t)

	tests := []struct {
		name         string
		donorMinDays float64
		wantQty      []float64
	}{
		{"defaults to coverage target", 0, nil},
		{"explicit floor below donor cover", 20, []float64{30}},
		{"explicit floor above donor cover", 26, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := DefaultPolicy()
			policy.Surplus = SurplusAboveReorder
			policy.DonorMinDays = tt.donorMinDays

			// W2 holds 25 days against a 30 day coverage target, 30 units above its reorder point.
			metrics := []domain.ProductWarehouseMetric{
				metricFor(t, refs, policy, "P1", "W1", 10, 300),
				metricFor(t, refs, policy, "P1", "W2", 250, 300),
			}

			plan := GenerateTransfers(calcDate, metrics, refs, policy)

			var got []float64
			for _, tr := range plan.Transfers {
				got = append(got, tr.Quantity)
			}
			assert.Equal(t, tt.wantQty, got)
		})
	}
}
