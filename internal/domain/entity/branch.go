package entity

import "time"

// Branch representa una sucursal de la cadena. El directorio de sucursales es
// un colaborador externo: aquí solo se consume lectura (activa, provincia,
// ciudad) para validar traslados y estimar distancias.
type Branch struct {
	ID        string
	Name      string
	Province  string
	City      string
	Address   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
