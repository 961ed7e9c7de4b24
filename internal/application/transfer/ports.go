package transfer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de
// traslados: ninguna operación multi-ítem (reserva, liberación, recepción)
// puede aplicarse a medias.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		transferRepo repository.TransferRepository,
		productRepo repository.ProductRepository,
		historyRepo repository.StatusHistoryRepository,
		movementRepo repository.InventoryMovementRepository,
	) error) error
}

// ItemForPDF línea enriquecida con datos de producto para la remisión.
type ItemForPDF struct {
	SKU         string
	Name        string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	TotalCost   decimal.Decimal
	BatchNumber string
}

// PDFGenerator genera la remisión de traslado en PDF.
type PDFGenerator interface {
	GenerateTransferPDF(ctx context.Context, t *entity.Transfer, source, destination *entity.Branch, items []ItemForPDF) ([]byte, error)
}
