package transfer

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// ApprovalPolicy umbrales monetarios de la política de aprobación.
// Vienen de configuración (pkg/config.TransferConfig): el auto-aprobado de
// emergencias es una política deliberada y visible, no un caso especial
// escondido.
type ApprovalPolicy struct {
	ManagerApprovalThreshold      decimal.Decimal
	EmergencyAutoApproveThreshold decimal.Decimal
}

// RequiresManagerApproval indica si el valor del traslado exige aprobación
// de nivel gerencial.
func (p ApprovalPolicy) RequiresManagerApproval(totalValue decimal.Decimal) bool {
	return totalValue.GreaterThanOrEqual(p.ManagerApprovalThreshold)
}

// AutoApprovable indica si el traslado se aprueba solo al crearlo:
// prioridad emergencia y valor por debajo del umbral de auto-aprobación.
func (p ApprovalPolicy) AutoApprovable(t *entity.Transfer) bool {
	return t.Priority == entity.PriorityEmergency &&
		t.TotalValue().LessThan(p.EmergencyAutoApproveThreshold)
}

// ApprovalAuthority decide si un actor puede aprobar o rechazar un traslado.
// La tabla de capacidades es cerrada por rol; no hay comparación de strings
// fuera del switch.
type ApprovalAuthority struct {
	policy ApprovalPolicy
}

// NewApprovalAuthority construye la autoridad con la política configurada.
func NewApprovalAuthority(policy ApprovalPolicy) *ApprovalAuthority {
	return &ApprovalAuthority{policy: policy}
}

// CanApprove evalúa la capacidad del actor sobre el traslado:
//   - admin: cualquier traslado.
//   - gerente_general: cualquier traslado, incluidos los de nivel gerencial.
//   - gerente_sucursal: solo traslados que NO requieren aprobación gerencial
//     y solo con acceso a la sucursal origen o destino.
func (a *ApprovalAuthority) CanApprove(user *entity.User, accessibleBranches []string, t *entity.Transfer) error {
	switch user.Role {
	case entity.RoleAdmin:
		return nil
	case entity.RoleGerenteGeneral:
		return nil
	case entity.RoleGerenteSucursal:
		if a.policy.RequiresManagerApproval(t.TotalValue()) {
			return domain.ErrUnauthorized
		}
		if !containsBranch(accessibleBranches, t.SourceBranchID) &&
			!containsBranch(accessibleBranches, t.DestinationBranchID) {
			return domain.ErrUnauthorized
		}
		return nil
	}
	return domain.ErrUnauthorized
}

// Policy expone la política vigente (para decisiones de auto-aprobación).
func (a *ApprovalAuthority) Policy() ApprovalPolicy {
	return a.policy
}
