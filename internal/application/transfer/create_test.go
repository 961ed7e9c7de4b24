package transfer_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Creación estándar
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_SolicitudEstandar(t *testing.T) {
	env := newTestEnv()

	resp, err := env.create.Create(context.Background(), userGS, validRequest())
	require.NoError(t, err)

	assert.Equal(t, "TF-20250310-0001", resp.TransferNumber)
	assert.Equal(t, string(entity.StatusPending), resp.Status)
	assert.Equal(t, string(entity.TypeStandard), resp.Type)
	assert.Equal(t, string(entity.PriorityNormal), resp.Priority)
	assert.Equal(t, userGS, resp.RequestedBy)
	assert.Len(t, resp.Items, 2)

	// Costos de ítems snapshoteados al costo vigente del producto
	assert.True(t, resp.Items[0].UnitCost.Equal(decimal.NewFromInt(10000)))
	assert.True(t, resp.Items[0].TotalCost.Equal(decimal.NewFromInt(200000)))

	// Medellín → Bogotá: 420 km; peso 20×0.5 + 8×1 = 18 kg
	// costo = 420 × 18 × 12.5 = 94500 (sobre el piso de 25000)
	assert.True(t, resp.DistanceKM.Equal(decimal.NewFromInt(420)))
	assert.True(t, resp.EstimatedCost.Equal(decimal.NewFromInt(94500)),
		"costo estimado esperado 94500, obtenido %s", resp.EstimatedCost)

	// prioridad normal (3 días) + 2 de recargo por >200 km
	require.NotNil(t, resp.EstimatedDeliveryDate)
	assert.Equal(t, env.clk.Now().AddDate(0, 0, 5), *resp.EstimatedDeliveryDate)

	// La creación no toca stock
	assert.True(t, env.stockOf(productCafe).Equal(decimal.NewFromInt(30)))
	assert.True(t, env.stockOf(productAzucar).Equal(decimal.NewFromInt(11)))

	// Bitácora: una sola entrada, "" → pending
	history := env.historyOf(resp.ID)
	require.Len(t, history, 1)
	assert.Equal(t, entity.TransferStatus(""), history[0].FromStatus)
	assert.Equal(t, entity.StatusPending, history[0].ToStatus)
	assert.Equal(t, userGS, history[0].ChangedBy)
}

func TestCreate_CostoBajoElPiso(t *testing.T) {
	env := newTestEnv()

	// 1 unidad de café: 420 × 0.5 × 12.5 = 2625 < 25000 → piso
	in := validRequest()
	in.Items = []dto.TransferItemRequest{{ProductID: productCafe, Quantity: decimal.NewFromInt(1)}}

	resp, err := env.create.Create(context.Background(), userGS, in)
	require.NoError(t, err)
	assert.True(t, resp.EstimatedCost.Equal(decimal.NewFromInt(25000)),
		"debe aplicarse el costo mínimo, obtenido %s", resp.EstimatedCost)
}

func TestCreate_SecuenciaDelDia(t *testing.T) {
	env := newTestEnv()

	first, err := env.create.Create(context.Background(), userGS, validRequest())
	require.NoError(t, err)

	in := validRequest()
	in.Items = []dto.TransferItemRequest{{ProductID: productCafe, Quantity: decimal.NewFromInt(1)}}
	second, err := env.create.Create(context.Background(), userGS, in)
	require.NoError(t, err)

	assert.Equal(t, "TF-20250310-0001", first.TransferNumber)
	assert.Equal(t, "TF-20250310-0002", second.TransferNumber)
}

func TestCreate_ReintentaAnteColisionDeNumero(t *testing.T) {
	env := newTestEnv()

	// Número emitido por otro proceso: visible para el índice único pero aún
	// no para MaxSequenceForDate (sin fila de traslado asociada)
	env.store.takenNumbers["TF-20250310-0001"] = true

	resp, err := env.create.Create(context.Background(), userGS, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "TF-20250310-0002", resp.TransferNumber,
		"tras la colisión debe reintentar con la siguiente secuencia")

	// El reintento no deja entradas huérfanas en la bitácora
	assert.Len(t, env.historyOf(resp.ID), 1)
}

func TestCreate_TipoInvalido(t *testing.T) {
	env := newTestEnv()

	in := validRequest()
	in.Type = "teletransporte"

	_, err := env.create.Create(context.Background(), userGS, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_PrioridadInvalida(t *testing.T) {
	env := newTestEnv()

	in := validRequest()
	in.Priority = "urgentísima"

	_, err := env.create.Create(context.Background(), userGS, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_ValidacionFallida_NoDejaRastro(t *testing.T) {
	env := newTestEnv()

	in := validRequest()
	in.Items = []dto.TransferItemRequest{{ProductID: productAzucar, Quantity: decimal.NewFromInt(500)}}

	_, err := env.create.Create(context.Background(), userGS, in)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, env.store.transfers, "una solicitud inválida no debe persistir nada")
	assert.Empty(t, env.store.history)
}

// ──────────────────────────────────────────────────────────────────────────────
// Variantes bulk y emergency
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateBulk_FuerzaTipo(t *testing.T) {
	env := newTestEnv()

	resp, err := env.create.CreateBulk(context.Background(), userGS, validRequest())
	require.NoError(t, err)
	assert.Equal(t, string(entity.TypeBulk), resp.Type)
	assert.Equal(t, string(entity.StatusPending), resp.Status)
}

func TestCreateEmergency_BajoUmbral_AutoAprueba(t *testing.T) {
	env := newTestEnv()

	// Valor 232000 < 500000: sale aprobada con el solicitante como aprobador
	resp, err := env.create.CreateEmergency(context.Background(), userGS, validRequest())
	require.NoError(t, err)

	assert.Equal(t, string(entity.StatusApproved), resp.Status)
	assert.Equal(t, string(entity.TypeEmergency), resp.Type)
	assert.Equal(t, string(entity.PriorityEmergency), resp.Priority)
	require.NotNil(t, resp.ApprovedBy)
	assert.Equal(t, userGS, *resp.ApprovedBy)

	// La reserva ocurre en la misma transacción
	assert.True(t, env.stockOf(productCafe).Equal(decimal.NewFromInt(10)))
	assert.True(t, env.stockOf(productAzucar).Equal(decimal.NewFromInt(3)))

	// Dos entradas: creación y auto-aprobación
	history := env.historyOf(resp.ID)
	require.Len(t, history, 2)
	assert.Equal(t, entity.StatusPending, history[0].ToStatus)
	assert.Equal(t, entity.StatusApproved, history[1].ToStatus)
	assert.Equal(t, userGS, history[1].ChangedBy)
}

func TestCreateEmergency_EnElUmbral_QuedaPendiente(t *testing.T) {
	env := newTestEnv()

	// 5 × 100000 = 500000: exactamente el umbral, NO se auto-aprueba
	in := validRequest()
	in.Items = []dto.TransferItemRequest{{ProductID: productPesado, Quantity: decimal.NewFromInt(5)}}

	resp, err := env.create.CreateEmergency(context.Background(), userGS, in)
	require.NoError(t, err)

	assert.Equal(t, string(entity.StatusPending), resp.Status)
	assert.Nil(t, resp.ApprovedBy)
	assert.True(t, env.stockOf(productPesado).Equal(decimal.NewFromInt(100)),
		"sin auto-aprobación no debe reservarse stock")
	assert.Len(t, env.historyOf(resp.ID), 1)
}

func TestCreateEmergency_ETAde1Dia(t *testing.T) {
	env := newTestEnv()

	resp, err := env.create.CreateEmergency(context.Background(), userGS, validRequest())
	require.NoError(t, err)

	// emergencia (1 día) + 2 de recargo por 420 km
	require.NotNil(t, resp.EstimatedDeliveryDate)
	assert.Equal(t, env.clk.Now().AddDate(0, 0, 3), *resp.EstimatedDeliveryDate)
}
