package transfer

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// Gestor de reservas de stock: el único código que muta cantidades de
// producto. Las tres operaciones (reservar, liberar, confirmar) actúan sobre
// todos los ítems de un traslado y se ejecutan SIEMPRE con repositorios
// atados a una transacción (TxRunner.Run) y bloqueo de fila
// (SELECT FOR UPDATE); cualquier error revierte la transacción completa, así
// que nunca queda un decremento parcial.

// reserveItems descuenta el stock origen de cada ítem y registra los
// snapshots before/after. Re-verifica el stock bajo bloqueo: el chequeo de la
// validación pudo quedar obsoleto entre la solicitud y la aprobación.
func reserveItems(t *entity.Transfer, productRepo repository.ProductRepository, transferRepo repository.TransferRepository) error {
	for _, item := range t.Items {
		product, err := productRepo.GetForUpdate(item.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if product.Stock.LessThan(item.Quantity) {
			return domain.ErrInsufficientStock
		}
		item.SourceStockBefore = product.Stock
		item.SourceStockAfter = product.Stock.Sub(item.Quantity)
		if err := productRepo.AdjustStock(item.ProductID, item.Quantity.Neg()); err != nil {
			return err
		}
		if err := transferRepo.UpdateItem(item); err != nil {
			return err
		}
	}
	return nil
}

// releaseItems devuelve al stock origen las cantidades reservadas (inverso
// exacto de reserveItems). Solo se usa al cancelar un traslado aprobado.
func releaseItems(t *entity.Transfer, productRepo repository.ProductRepository) error {
	for _, item := range t.Items {
		product, err := productRepo.GetForUpdate(item.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if err := productRepo.AdjustStock(item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// commitItems incrementa el stock destino por la cantidad RECIBIDA de cada
// ítem (puede ser menor que la solicitada) y registra los snapshots destino.
// No toca el stock origen: ya se descontó en la reserva.
func commitItems(t *entity.Transfer, received map[string]decimal.Decimal, productRepo repository.ProductRepository, transferRepo repository.TransferRepository) error {
	for _, item := range t.Items {
		qty, ok := received[item.ProductID]
		if !ok {
			qty = item.Quantity // sin cantidad explícita = recepción completa
		}
		product, err := productRepo.GetForUpdate(item.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		item.ReceivedQuantity = qty
		item.DestinationStockBefore = product.Stock
		item.DestinationStockAfter = product.Stock.Add(qty)
		if err := productRepo.AdjustStock(item.ProductID, qty); err != nil {
			return err
		}
		if err := transferRepo.UpdateItem(item); err != nil {
			return err
		}
	}
	return nil
}
