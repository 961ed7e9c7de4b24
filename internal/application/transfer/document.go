package transfer

import (
	"context"
	"fmt"

	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// DocumentUseCase genera la remisión de traslado en PDF (documento que viaja
// con la mercancía entre sucursales).
type DocumentUseCase struct {
	query       *QueryUseCase
	transferRepo repository.TransferRepository
	branchRepo  repository.BranchRepository
	productRepo repository.ProductRepository
	generator   PDFGenerator
}

// NewDocumentUseCase construye el caso de uso.
func NewDocumentUseCase(
	query *QueryUseCase,
	transferRepo repository.TransferRepository,
	branchRepo repository.BranchRepository,
	productRepo repository.ProductRepository,
	generator PDFGenerator,
) *DocumentUseCase {
	return &DocumentUseCase{
		query:        query,
		transferRepo: transferRepo,
		branchRepo:   branchRepo,
		productRepo:  productRepo,
		generator:    generator,
	}
}

// TransferDocument genera el PDF de la remisión y el nombre de archivo
// sugerido. Aplica el mismo alcance de sucursales que el detalle.
func (uc *DocumentUseCase) TransferDocument(ctx context.Context, userID, transferID string) ([]byte, string, error) {
	// Reutiliza el chequeo de alcance del detalle
	if _, err := uc.query.GetByID(userID, transferID); err != nil {
		return nil, "", err
	}
	t, err := uc.transferRepo.GetByID(transferID)
	if err != nil {
		return nil, "", err
	}
	if t == nil {
		return nil, "", domain.ErrNotFound
	}

	source, err := uc.branchRepo.GetByID(t.SourceBranchID)
	if err != nil {
		return nil, "", err
	}
	destination, err := uc.branchRepo.GetByID(t.DestinationBranchID)
	if err != nil {
		return nil, "", err
	}
	if source == nil || destination == nil {
		return nil, "", domain.ErrNotFound
	}

	items := make([]ItemForPDF, 0, len(t.Items))
	for _, item := range t.Items {
		row := ItemForPDF{
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost,
			TotalCost:   item.TotalCost,
			BatchNumber: item.BatchNumber,
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, "", err
		}
		if product != nil {
			row.SKU = product.SKU
			row.Name = product.Name
		}
		items = append(items, row)
	}

	pdf, err := uc.generator.GenerateTransferPDF(ctx, t, source, destination, items)
	if err != nil {
		return nil, "", fmt.Errorf("generar remisión: %w", err)
	}
	return pdf, fmt.Sprintf("remision-%s.pdf", t.TransferNumber), nil
}
