package transfer_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/transfer"
)

// ──────────────────────────────────────────────────────────────────────────────
// DistanceKM
// ──────────────────────────────────────────────────────────────────────────────

func TestDistanceKM_MismaProvincia(t *testing.T) {
	assert.Equal(t, 15, transfer.DistanceKM("Antioquia", "Antioquia"),
		"misma provincia debe usar la distancia corta fija")
}

func TestDistanceKM_ParConocido(t *testing.T) {
	assert.Equal(t, 420, transfer.DistanceKM("Antioquia", "Cundinamarca"))
	// La tabla es simétrica: el orden de los argumentos no importa
	assert.Equal(t, 420, transfer.DistanceKM("Cundinamarca", "Antioquia"))
}

func TestDistanceKM_ParDesconocido_UsaDefault(t *testing.T) {
	assert.Equal(t, 250, transfer.DistanceKM("Nariño", "La Guajira"),
		"par sin entrada en la tabla debe usar la distancia por defecto")
}

// ──────────────────────────────────────────────────────────────────────────────
// EstimateCost
// ──────────────────────────────────────────────────────────────────────────────

func TestEstimateCost_DistanciaPorPesoPorTarifa(t *testing.T) {
	// 420 km × 10 kg × 12.5 = 52500
	cost := transfer.EstimateCost(420,
		decimal.NewFromInt(10),
		decimal.RequireFromString("12.5"),
		decimal.NewFromInt(25000))
	assert.True(t, cost.Equal(decimal.NewFromInt(52500)),
		"costo esperado 52500, obtenido %s", cost)
}

func TestEstimateCost_AplicaPiso(t *testing.T) {
	// 15 km × 2 kg × 12.5 = 375 < 25000 → se aplica el mínimo
	cost := transfer.EstimateCost(15,
		decimal.NewFromInt(2),
		decimal.RequireFromString("12.5"),
		decimal.NewFromInt(25000))
	assert.True(t, cost.Equal(decimal.NewFromInt(25000)),
		"costo bajo el piso debe elevarse al mínimo, obtenido %s", cost)
}

func TestEstimateCost_IgualAlPiso_NoSeAltera(t *testing.T) {
	cost := transfer.EstimateCost(100,
		decimal.NewFromInt(20),
		decimal.RequireFromString("12.5"),
		decimal.NewFromInt(25000))
	assert.True(t, cost.Equal(decimal.NewFromInt(25000)))
}

// ──────────────────────────────────────────────────────────────────────────────
// EstimateDelivery
// ──────────────────────────────────────────────────────────────────────────────

func TestEstimateDelivery_DiasBasePorPrioridad(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		priority entity.TransferPriority
		days     int
	}{
		{entity.PriorityEmergency, 1},
		{entity.PriorityHigh, 2},
		{entity.PriorityNormal, 3},
		{entity.PriorityLow, 5},
	}
	for _, tc := range cases {
		// distancia corta: sin recargos
		got := transfer.EstimateDelivery(now, tc.priority, 15)
		assert.Equal(t, now.AddDate(0, 0, tc.days), got,
			"prioridad %s debe sumar %d días base", tc.priority, tc.days)
	}
}

func TestEstimateDelivery_RecargosPorDistancia(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	// 100 km exactos: sin recargo
	assert.Equal(t, now.AddDate(0, 0, 3), transfer.EstimateDelivery(now, entity.PriorityNormal, 100))
	// >100 km: +1 día
	assert.Equal(t, now.AddDate(0, 0, 4), transfer.EstimateDelivery(now, entity.PriorityNormal, 150))
	// >200 km: +2 días
	assert.Equal(t, now.AddDate(0, 0, 5), transfer.EstimateDelivery(now, entity.PriorityNormal, 420))
}
