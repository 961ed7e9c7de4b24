package transfer

import (
	"fmt"
	"time"
)

// Formato del número de traslado: TF-YYYYMMDD-NNNN. La secuencia reinicia
// cada día y la unicidad la garantiza el constraint único de la tabla: una
// colisión por emisión concurrente se resuelve reintentando con la
// siguiente secuencia, nunca fallando de plano.
const transferNumberPrefix = "TF"

// maxNumberAttempts reintentos de asignación de número ante colisiones.
const maxNumberAttempts = 5

// FormatTransferNumber arma el número para un día y una secuencia dada.
func FormatTransferNumber(day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", transferNumberPrefix, day.Format("20060102"), seq)
}
