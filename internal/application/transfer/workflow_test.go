package transfer_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

func createPending(t *testing.T, env *testEnv) *dto.TransferResponse {
	t.Helper()
	resp, err := env.create.Create(context.Background(), userGS, validRequest())
	require.NoError(t, err)
	return resp
}

func approve(t *testing.T, env *testEnv, transferID string) *dto.TransferResponse {
	t.Helper()
	resp, err := env.workflow.Approve(context.Background(), userGG, transferID,
		dto.ApproveTransferRequest{IsApproved: true})
	require.NoError(t, err)
	return resp
}

func ship(t *testing.T, env *testEnv, transferID string) *dto.TransferResponse {
	t.Helper()
	resp, err := env.workflow.Ship(context.Background(), userGS, transferID, dto.ShipTransferRequest{})
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Aprobación
// ──────────────────────────────────────────────────────────────────────────────

func TestApprove_ReservaStock(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)

	resp := approve(t, env, created.ID)

	assert.Equal(t, string(entity.StatusApproved), resp.Status)
	require.NotNil(t, resp.ApprovedBy)
	assert.Equal(t, userGG, *resp.ApprovedBy)

	// café 30−20=10, azúcar 11−8=3
	assert.True(t, env.stockOf(productCafe).Equal(decimal.NewFromInt(10)))
	assert.True(t, env.stockOf(productAzucar).Equal(decimal.NewFromInt(3)))

	// Snapshots origen registrados en los ítems
	assert.True(t, resp.Items[0].SourceStockBefore.Equal(decimal.NewFromInt(30)))
	assert.True(t, resp.Items[0].SourceStockAfter.Equal(decimal.NewFromInt(10)))
	assert.True(t, resp.Items[1].SourceStockBefore.Equal(decimal.NewFromInt(11)))
	assert.True(t, resp.Items[1].SourceStockAfter.Equal(decimal.NewFromInt(3)))
}

func TestApprove_StockInsuficienteAlAprobar_RevierteTodo(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)

	// El stock de azúcar cayó entre la solicitud y la aprobación
	env.store.products[productAzucar].Stock = decimal.NewFromInt(5)

	_, err := env.workflow.Approve(context.Background(), userGG, created.ID,
		dto.ApproveTransferRequest{IsApproved: true})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// El primer ítem (café) alcanzó a reservarse dentro de la tx: el rollback
	// debe dejarlo intacto y el traslado en pending
	assert.True(t, env.stockOf(productCafe).Equal(decimal.NewFromInt(30)),
		"la reserva parcial debe revertirse por completo")
	assert.Equal(t, entity.StatusPending, env.store.transfers[created.ID].Status)
	assert.Len(t, env.historyOf(created.ID), 1, "una aprobación fallida no agrega historia")
}

func TestApprove_RechazoSinMotivo(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)

	_, err := env.workflow.Approve(context.Background(), userGG, created.ID,
		dto.ApproveTransferRequest{IsApproved: false})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "rechazar exige motivo")
}

func TestApprove_Rechazo(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)

	resp, err := env.workflow.Approve(context.Background(), userGG, created.ID,
		dto.ApproveTransferRequest{IsApproved: false, Reason: "inventario suficiente en destino"})
	require.NoError(t, err)

	assert.Equal(t, string(entity.StatusRejected), resp.Status)
	assert.True(t, env.stockOf(productCafe).Equal(decimal.NewFromInt(30)), "el rechazo no toca stock")

	history := env.historyOf(created.ID)
	require.Len(t, history, 2)
	assert.Equal(t, entity.StatusRejected, history[1].ToStatus)
	assert.Equal(t, "inventario suficiente en destino", history[1].Reason)
}

func TestApprove_SinCapacidad(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)

	_, err := env.workflow.Approve(context.Background(), userAjeno, created.ID,
		dto.ApproveTransferRequest{IsApproved: true})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, entity.StatusPending, env.store.transfers[created.ID].Status)
}

func TestApprove_YaAprobado(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)
	approve(t, env, created.ID)

	_, err := env.workflow.Approve(context.Background(), userGG, created.ID,
		dto.ApproveTransferRequest{IsApproved: true})
	assert.ErrorIs(t, err, domain.ErrStateConflict)

	// La reserva no se aplica dos veces
	assert.True(t, env.stockOf(productCafe).Equal(decimal.NewFromInt(10)))
}

func TestApprove_TrasladoInexistente(t *testing.T) {
	env := newTestEnv()

	_, err := env.workflow.Approve(context.Background(), userGG, "tr-fantasma",
		dto.ApproveTransferRequest{IsApproved: true})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Despacho
// ──────────────────────────────────────────────────────────────────────────────

func TestShip_EmiteMovimientosDeSalida(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)
	approve(t, env, created.ID)

	resp, err := env.workflow.Ship(context.Background(), userGS, created.ID,
		dto.ShipTransferRequest{TrackingInfo: "guía TCC 998877"})
	require.NoError(t, err)

	assert.Equal(t, string(entity.StatusInTransit), resp.Status)
	assert.Equal(t, "guía TCC 998877", resp.TrackingInfo)
	require.NotNil(t, resp.ShippedBy)
	assert.Equal(t, userGS, *resp.ShippedBy)

	// El despacho no toca stock: ya se descontó en la reserva
	assert.True(t, env.stockOf(productCafe).Equal(decimal.NewFromInt(10)))

	// Un movimiento de salida por ítem, cantidad negativa, sucursal origen
	movements := env.movementsOf(created.ID)
	require.Len(t, movements, 2)
	for _, mov := range movements {
		assert.Equal(t, entity.MovementTypeOut, mov.Type)
		assert.Equal(t, branchMedellin, mov.BranchID)
		assert.True(t, mov.Quantity.IsNegative(), "la salida se registra con cantidad negativa")
	}
	assert.True(t, movements[0].Quantity.Equal(decimal.NewFromInt(-20)))
	assert.True(t, movements[1].Quantity.Equal(decimal.NewFromInt(-8)))
}

func TestShip_CostoRealPorDefecto(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)
	approve(t, env, created.ID)

	resp := ship(t, env, created.ID)
	assert.True(t, resp.ActualCost.Equal(resp.EstimatedCost),
		"sin costo real explícito se asume el estimado")
}

func TestShip_CostoRealExplicito(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)
	approve(t, env, created.ID)

	actual := decimal.NewFromInt(110000)
	resp, err := env.workflow.Ship(context.Background(), userGS, created.ID,
		dto.ShipTransferRequest{ActualCost: &actual})
	require.NoError(t, err)
	assert.True(t, resp.ActualCost.Equal(actual))
}

func TestShip_DesdePending(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)

	_, err := env.workflow.Ship(context.Background(), userGS, created.ID, dto.ShipTransferRequest{})
	assert.ErrorIs(t, err, domain.ErrStateConflict, "no se despacha sin aprobar")
	assert.Empty(t, env.movementsOf(created.ID))
}

func TestShip_SinAccesoASucursales(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)
	approve(t, env, created.ID)

	_, err := env.workflow.Ship(context.Background(), userAjeno, created.ID, dto.ShipTransferRequest{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepción
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_Completa(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)
	approve(t, env, created.ID)
	ship(t, env, created.ID)

	resp, err := env.workflow.Receive(context.Background(), userGS, created.ID,
		dto.ReceiveTransferRequest{})
	require.NoError(t, err)

	assert.Equal(t, string(entity.StatusCompleted), resp.Status)
	require.NotNil(t, resp.ReceivedBy)
	assert.Equal(t, userGS, *resp.ReceivedBy)

	// Reserva 30→10, recepción completa 10→30
	assert.True(t, env.stockOf(productCafe).Equal(decimal.NewFromInt(30)))
	assert.True(t, env.stockOf(productAzucar).Equal(decimal.NewFromInt(11)))
	assert.True(t, resp.Items[0].ReceivedQuantity.Equal(decimal.NewFromInt(20)))

	// Un movimiento de entrada por ítem en destino (más los 2 de salida)
	movements := env.movementsOf(created.ID)
	require.Len(t, movements, 4)
	entradas := 0
	for _, mov := range movements {
		if mov.Type == entity.MovementTypeIn {
			entradas++
			assert.Equal(t, branchBogota, mov.BranchID)
			assert.True(t, mov.Quantity.IsPositive())
		}
	}
	assert.Equal(t, 2, entradas)
}

func TestReceive_Parcial(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)
	approve(t, env, created.ID)
	ship(t, env, created.ID)

	// Del azúcar llegan 5 de 8; el café completo (sin cantidad explícita)
	resp, err := env.workflow.Receive(context.Background(), userGS, created.ID,
		dto.ReceiveTransferRequest{Items: []dto.ReceiveItemRequest{
			{ProductID: productAzucar, ReceivedQuantity: decimal.NewFromInt(5)},
		}})
	require.NoError(t, err)

	assert.Equal(t, string(entity.StatusCompleted), resp.Status)
	assert.True(t, resp.Items[1].ReceivedQuantity.Equal(decimal.NewFromInt(5)))
	// azúcar: 11 − 8 reservadas + 5 recibidas = 8
	assert.True(t, env.stockOf(productAzucar).Equal(decimal.NewFromInt(8)))
	assert.True(t, resp.Items[1].DestinationStockBefore.Equal(decimal.NewFromInt(3)))
	assert.True(t, resp.Items[1].DestinationStockAfter.Equal(decimal.NewFromInt(8)))

	// El movimiento de entrada refleja lo recibido, no lo solicitado
	var entradaAzucar *entity.InventoryMovement
	for _, mov := range env.movementsOf(created.ID) {
		if mov.Type == entity.MovementTypeIn && mov.ProductID == productAzucar {
			entradaAzucar = mov
		}
	}
	require.NotNil(t, entradaAzucar)
	assert.True(t, entradaAzucar.Quantity.Equal(decimal.NewFromInt(5)))
}

func TestReceive_CantidadExcedeLaSolicitada(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)
	approve(t, env, created.ID)
	ship(t, env, created.ID)

	_, err := env.workflow.Receive(context.Background(), userGS, created.ID,
		dto.ReceiveTransferRequest{Items: []dto.ReceiveItemRequest{
			{ProductID: productAzucar, ReceivedQuantity: decimal.NewFromInt(9)},
		}})

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Violations[0], "excede")
	assert.Equal(t, entity.StatusInTransit, env.store.transfers[created.ID].Status)
	assert.True(t, env.stockOf(productAzucar).Equal(decimal.NewFromInt(3)),
		"una recepción inválida no toca stock")
}

func TestReceive_ProductoAjenoAlTraslado(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)
	approve(t, env, created.ID)
	ship(t, env, created.ID)

	_, err := env.workflow.Receive(context.Background(), userGS, created.ID,
		dto.ReceiveTransferRequest{Items: []dto.ReceiveItemRequest{
			{ProductID: productPesado, ReceivedQuantity: decimal.NewFromInt(1)},
		}})

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Violations[0], "no pertenece")
}

func TestReceive_DesdePending(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)

	_, err := env.workflow.Receive(context.Background(), userGS, created.ID,
		dto.ReceiveTransferRequest{})
	assert.ErrorIs(t, err, domain.ErrStateConflict)
	assert.True(t, env.stockOf(productCafe).Equal(decimal.NewFromInt(30)))
	assert.Empty(t, env.movementsOf(created.ID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancelación
// ──────────────────────────────────────────────────────────────────────────────

func TestCancel_Pendiente_NoTocaStock(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)

	resp, err := env.workflow.Cancel(context.Background(), userGS, created.ID,
		dto.CancelTransferRequest{Reason: "solicitud duplicada"})
	require.NoError(t, err)

	assert.Equal(t, string(entity.StatusCancelled), resp.Status)
	assert.Equal(t, "solicitud duplicada", resp.CancelReason)
	assert.True(t, env.stockOf(productCafe).Equal(decimal.NewFromInt(30)))
}

func TestCancel_Aprobado_LiberaReserva(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)
	approve(t, env, created.ID)
	require.True(t, env.stockOf(productCafe).Equal(decimal.NewFromInt(10)))

	resp, err := env.workflow.Cancel(context.Background(), userGS, created.ID,
		dto.CancelTransferRequest{Reason: "ya no se necesita"})
	require.NoError(t, err)

	assert.Equal(t, string(entity.StatusCancelled), resp.Status)
	// El stock origen vuelve exactamente a su valor previo
	assert.True(t, env.stockOf(productCafe).Equal(decimal.NewFromInt(30)))
	assert.True(t, env.stockOf(productAzucar).Equal(decimal.NewFromInt(11)))
}

func TestCancel_EnTransito(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)
	approve(t, env, created.ID)
	ship(t, env, created.ID)

	_, err := env.workflow.Cancel(context.Background(), userGS, created.ID,
		dto.CancelTransferRequest{Reason: "arrepentimiento"})
	assert.ErrorIs(t, err, domain.ErrStateConflict,
		"la mercancía ya salió: en tránsito no se cancela")
}

func TestCancel_SinMotivo(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)

	_, err := env.workflow.Cancel(context.Background(), userGS, created.ID,
		dto.CancelTransferRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida completo
// ──────────────────────────────────────────────────────────────────────────────

func TestCicloDeVidaCompleto_Bitacora(t *testing.T) {
	env := newTestEnv()
	created := createPending(t, env)
	approve(t, env, created.ID)
	env.clk.Advance(time.Hour)
	ship(t, env, created.ID)
	env.clk.Advance(time.Hour)
	_, err := env.workflow.Receive(context.Background(), userGS, created.ID,
		dto.ReceiveTransferRequest{})
	require.NoError(t, err)

	history := env.historyOf(created.ID)
	require.Len(t, history, 4)

	expected := []entity.TransferStatus{
		entity.StatusPending,
		entity.StatusApproved,
		entity.StatusInTransit,
		entity.StatusCompleted,
	}
	for i, entry := range history {
		assert.Equal(t, expected[i], entry.ToStatus, "entrada %d de la bitácora", i)
	}
	// Cada entrada encadena con la anterior
	for i := 1; i < len(history); i++ {
		assert.Equal(t, history[i-1].ToStatus, history[i].FromStatus)
	}
}
