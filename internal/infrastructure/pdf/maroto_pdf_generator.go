// Package pdf implementa la generación de la remisión de traslado, el
// documento impreso que acompaña la mercancía entre sucursales.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: REMISIÓN DE TRASLADO │ N° Traslado + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORIGEN: Sucursal + ciudad/provincia                         │
//	│  DESTINO: Sucursal + ciudad/provincia                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | SKU | Producto | Lote | Costo Unit | Total    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Valor mercancía / Costo estimado / Distancia / ETA │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con N° de traslado + firmas despacho/recepción   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	apptransfer "github.com/jhoicas/traslados-api/internal/application/transfer"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// Etiquetas legibles para prioridad y tipo.
var priorityLabels = map[entity.TransferPriority]string{
	entity.PriorityLow:       "Baja",
	entity.PriorityNormal:    "Normal",
	entity.PriorityHigh:      "Alta",
	entity.PriorityEmergency: "EMERGENCIA",
}

var typeLabels = map[entity.TransferType]string{
	entity.TypeStandard:  "Estándar",
	entity.TypeBulk:      "Masivo",
	entity.TypeEmergency: "Emergencia",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa transfer.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateTransferPDF genera la remisión y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateTransferPDF(
	_ context.Context,
	t *entity.Transfer,
	source, destination *entity.Branch,
	items []apptransfer.ItemForPDF,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Remisión de Traslado "+t.TransferNumber, true).
		WithAuthor(source.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(t))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(branchRow("ORIGEN", source))
	m.AddRows(branchRow("DESTINO", destination))
	m.AddRows(detailsRow(t))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(t))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range footerRows(t) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y N° de traslado + fecha (der).
func headerRow(t *entity.Transfer) core.Row {
	fecha := t.RequestedAt.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New("REMISIÓN DE TRASLADO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Traslado de mercancía entre sucursales", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("N° DE TRASLADO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(t.TransferNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// branchRow: datos de una sucursal (origen o destino).
func branchRow(label string, b *entity.Branch) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   %s, %s   |   %s",
				b.Name, b.City, b.Province, nonEmpty(b.Address, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// detailsRow: tipo, prioridad y motivo del traslado.
func detailsRow(t *entity.Transfer) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Tipo: %s   |   Prioridad: %s",
				typeLabels[t.Type], priorityLabels[t.Priority],
			), props.Text{Style: fontstyle.Bold, Size: 8, Top: 1}),
			text.New("Motivo: "+t.Reason, props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de ítems.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("SKU", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Lote", 1, align.Center),
		h("Costo Unit.", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

// tableItemRows: una fila por ítem del traslado.
func tableItemRows(items []apptransfer.ItemForPDF) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				it.Quantity.StringFixed(0),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				it.SKU,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(4).Add(text.New(
				it.Name,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				nonEmpty(it.BatchNumber, "—"),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				"$"+formatMoney(it.UnitCost.StringFixed(0)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"$"+formatMoney(it.TotalCost.StringFixed(0)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: valor de la mercancía, costo logístico, distancia y ETA.
func totalsRow(t *entity.Transfer) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	eta := "—"
	if t.EstimatedDeliveryDate != nil {
		eta = t.EstimatedDeliveryDate.Format("02/01/2006")
	}
	total := t.TotalValue().StringFixed(0)

	return row.New(32).Add(
		col.New(3), // espacio izquierdo
		col.New(3).Add(
			label("Costo estimado:"),
			label("Distancia:"),
			label("Entrega estimada:"),
			grandLabel("VALOR MERCANCÍA:"),
		),
		col.New(3).Add(
			value("$"+formatMoney(t.EstimatedCost.StringFixed(0))),
			value(t.DistanceKM.StringFixed(0)+" km"),
			value(eta),
			grandValue("$"+formatMoney(total)),
		),
		col.New(3), // espacio derecho
	)
}

// footerRows: QR con el número de traslado + espacios de firma.
func footerRows(t *entity.Transfer) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("CONTROL DE DESPACHO Y RECEPCIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
		row.New(40).Add(
			col.New(4).Add(code.NewQr(t.TransferNumber, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(4).Add(
				text.New("Despachado por:", props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
				text.New("Firma: ______________________", props.Text{Size: 8, Top: 14, Left: 3}),
				text.New("Fecha: ______________________", props.Text{Size: 8, Top: 22, Left: 3}),
			),
			col.New(4).Add(
				text.New("Recibido por:", props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
				text.New("Firma: ______________________", props.Text{Size: 8, Top: 14, Left: 3}),
				text.New("Fecha: ______________________", props.Text{Size: 8, Top: 22, Left: 3}),
			),
		),
	}

	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Este documento ampara el traslado de la mercancía relacionada entre las sucursales "+
				"indicadas. Verifique cantidades y estado al momento de la recepción.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
