// Package transfer contiene los cálculos puros del motor de traslados:
// distancia entre sucursales, costo estimado y fecha estimada de entrega.
package transfer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// Distancias de referencia en kilómetros.
const (
	sameProvinceKM    = 15  // sucursales en la misma provincia
	defaultDistanceKM = 250 // par de provincias sin entrada explícita
)

// provincePairKM distancias por carretera entre capitales de provincia.
// La clave es el par ordenado alfabéticamente (ver pairKey).
var provincePairKM = map[[2]string]int{
	{"Antioquia", "Cundinamarca"}:     420,
	{"Antioquia", "Valle del Cauca"}:  350,
	{"Antioquia", "Santander"}:        390,
	{"Antioquia", "Atlántico"}:        700,
	{"Cundinamarca", "Valle del Cauca"}: 460,
	{"Cundinamarca", "Santander"}:     400,
	{"Cundinamarca", "Atlántico"}:     1000,
	{"Atlántico", "Santander"}:        600,
	{"Santander", "Valle del Cauca"}:  780,
	{"Atlántico", "Valle del Cauca"}:  1080,
}

// pairKey normaliza el par de provincias a su forma ordenada.
func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// DistanceKM devuelve la distancia estimada entre dos provincias:
// misma provincia = distancia corta fija; pares conocidos de la tabla;
// default para el resto.
func DistanceKM(sourceProvince, destinationProvince string) int {
	if sourceProvince == destinationProvince {
		return sameProvinceKM
	}
	if km, ok := provincePairKM[pairKey(sourceProvince, destinationProvince)]; ok {
		return km
	}
	return defaultDistanceKM
}

// EstimateCost calcula el costo del traslado:
// distancia × peso total × tarifa por km·kg, con piso en minimumCost.
func EstimateCost(distanceKM int, totalWeightKG, ratePerKMKG, minimumCost decimal.Decimal) decimal.Decimal {
	cost := decimal.NewFromInt(int64(distanceKM)).Mul(totalWeightKG).Mul(ratePerKMKG)
	if cost.LessThan(minimumCost) {
		return minimumCost
	}
	return cost
}

// baseLeadDays días base de entrega según prioridad.
func baseLeadDays(priority entity.TransferPriority) int {
	switch priority {
	case entity.PriorityEmergency:
		return 1
	case entity.PriorityHigh:
		return 2
	case entity.PriorityNormal:
		return 3
	case entity.PriorityLow:
		return 5
	}
	return 3
}

// EstimateDelivery calcula la fecha estimada de entrega: now + días base por
// prioridad, +1 día si la distancia supera 100 km y +1 más si supera 200 km.
func EstimateDelivery(now time.Time, priority entity.TransferPriority, distanceKM int) time.Time {
	days := baseLeadDays(priority)
	if distanceKM > 100 {
		days++
	}
	if distanceKM > 200 {
		days++
	}
	return now.AddDate(0, 0, days)
}
