package entity

import "time"

// Role rol de un usuario. Tipo cerrado: las decisiones de autorización se
// toman con switch sobre estas constantes, nunca comparando strings sueltos.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleGerenteGeneral  Role = "gerente_general"  // puede aprobar traslados de nivel gerencial
	RoleGerenteSucursal Role = "gerente_sucursal" // limitado a sus sucursales y a traslados menores
)

// ParseRole valida y normaliza un rol recibido como string (claims JWT, DB).
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	switch r {
	case RoleAdmin, RoleGerenteGeneral, RoleGerenteSucursal:
		return r, true
	}
	return "", false
}

// User representa un usuario del sistema. Las sucursales accesibles se
// consultan aparte (UserRepository.GetAccessibleBranches).
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         Role
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
