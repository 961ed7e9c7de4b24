package transfer

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
	"github.com/jhoicas/traslados-api/pkg/clock"
)

// RequestValidator valida una solicitud de traslado antes de admitirla.
// Acumula todas las violaciones (no se corta en la primera) y no produce
// ninguna mutación: una solicitud inválida no deja rastro.
type RequestValidator struct {
	branchRepo  repository.BranchRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	clk         clock.Clock
}

// NewRequestValidator construye el validador.
func NewRequestValidator(
	branchRepo repository.BranchRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	clk clock.Clock,
) *RequestValidator {
	return &RequestValidator{
		branchRepo:  branchRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		clk:         clk,
	}
}

// ValidatedRequest datos ya cargados durante la validación, para que el caso
// de uso de creación no repita lecturas.
type ValidatedRequest struct {
	Source      *entity.Branch
	Destination *entity.Branch
	Products    map[string]*entity.Product
}

// ValidateCreate aplica todas las reglas de admisión y devuelve la lista
// completa de violaciones como domain.ValidationError si alguna falla.
func (v *RequestValidator) ValidateCreate(userID string, in dto.CreateTransferRequest) (*ValidatedRequest, error) {
	var violations []string

	result := &ValidatedRequest{Products: make(map[string]*entity.Product)}

	// Sucursales: distintas, existentes y activas
	if in.SourceBranchID == "" || in.DestinationBranchID == "" {
		violations = append(violations, "sucursal origen y destino son obligatorias")
	} else if in.SourceBranchID == in.DestinationBranchID {
		violations = append(violations, "la sucursal origen y destino deben ser distintas")
	}

	if in.SourceBranchID != "" {
		source, err := v.branchRepo.GetByID(in.SourceBranchID)
		if err != nil {
			return nil, err
		}
		switch {
		case source == nil:
			violations = append(violations, fmt.Sprintf("sucursal origen %s no existe", in.SourceBranchID))
		case !source.IsActive:
			violations = append(violations, fmt.Sprintf("sucursal origen %s está inactiva", source.Name))
		default:
			result.Source = source
		}
	}
	if in.DestinationBranchID != "" && in.DestinationBranchID != in.SourceBranchID {
		destination, err := v.branchRepo.GetByID(in.DestinationBranchID)
		if err != nil {
			return nil, err
		}
		switch {
		case destination == nil:
			violations = append(violations, fmt.Sprintf("sucursal destino %s no existe", in.DestinationBranchID))
		case !destination.IsActive:
			violations = append(violations, fmt.Sprintf("sucursal destino %s está inactiva", destination.Name))
		default:
			result.Destination = destination
		}
	}

	// Acceso del solicitante: al menos una de las dos sucursales (admin exento)
	user, err := v.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		violations = append(violations, "el usuario solicitante no existe")
	} else if user.Role != entity.RoleAdmin {
		branches, err := v.userRepo.GetAccessibleBranches(userID)
		if err != nil {
			return nil, err
		}
		if !containsBranch(branches, in.SourceBranchID) && !containsBranch(branches, in.DestinationBranchID) {
			violations = append(violations, "el solicitante no tiene acceso a la sucursal origen ni a la destino")
		}
	}

	// Ítems: al menos uno; productos existentes, activos y con stock suficiente
	if len(in.Items) == 0 {
		violations = append(violations, "el traslado debe tener al menos un ítem")
	}
	now := v.clk.Now()
	for i, item := range in.Items {
		if item.ProductID == "" {
			violations = append(violations, fmt.Sprintf("ítem %d: product_id es obligatorio", i+1))
			continue
		}
		if !item.Quantity.GreaterThan(decimal.Zero) {
			violations = append(violations, fmt.Sprintf("ítem %d: la cantidad debe ser mayor que cero", i+1))
		}
		if item.ExpiryDate != nil && item.ExpiryDate.Before(now) {
			violations = append(violations, fmt.Sprintf("ítem %d: la fecha de vencimiento no puede estar en el pasado", i+1))
		}
		product, err := v.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		switch {
		case product == nil:
			violations = append(violations, fmt.Sprintf("ítem %d: producto %s no existe", i+1, item.ProductID))
		case !product.IsActive:
			violations = append(violations, fmt.Sprintf("ítem %d: producto %s está inactivo", i+1, product.SKU))
		default:
			result.Products[item.ProductID] = product
			if product.Stock.LessThan(item.Quantity) {
				violations = append(violations, fmt.Sprintf(
					"ítem %d: stock insuficiente de %s (disponible %s, solicitado %s)",
					i+1, product.SKU, product.Stock.String(), item.Quantity.String()))
			}
		}
	}

	if len(violations) > 0 {
		return nil, domain.NewValidationError(violations)
	}
	return result, nil
}

// containsBranch busca un ID de sucursal en la lista de accesibles.
func containsBranch(branches []string, id string) bool {
	for _, b := range branches {
		if b == id {
			return true
		}
	}
	return false
}
