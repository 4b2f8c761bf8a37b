// Package pdf genera el reporte de movimientos de inventario de una venta.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + Venta N°   │  Fecha de generación         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Ítem | Tipo | Cambio | Anterior | Nuevo | Nota      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: salidas / reingresos                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var _ inventory.MovementReportGenerator = (*MovementReportGenerator)(nil)

// MovementReportGenerator implementa inventory.MovementReportGenerator usando Maroto v2.
type MovementReportGenerator struct {
	now func() time.Time
}

func NewMovementReportGenerator() *MovementReportGenerator {
	return &MovementReportGenerator{now: time.Now}
}

// GenerateMovementReport genera el PDF y devuelve sus bytes.
func (g *MovementReportGenerator) GenerateMovementReport(
	_ context.Context,
	saleID string,
	movements []*entity.MovementRecord,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Movimientos de inventario "+saleID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(saleID, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	m.AddRows(movementRows(movements)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(movements))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(saleID string, at time.Time) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("MOVIMIENTOS DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Venta: "+saleID, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Generado: "+at.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Ítem", 3, align.Left),
		h("Tipo", 2, align.Left),
		h("Cambio", 2, align.Right),
		h("Anterior", 1, align.Right),
		h("Nuevo", 1, align.Right),
		h("Nota", 3, align.Left),
	)
}

// movementRows: una fila por movimiento; las salidas en rojo.
func movementRows(movements []*entity.MovementRecord) []core.Row {
	rows := make([]core.Row, 0, len(movements))
	for _, mv := range movements {
		change := props.Text{Size: 8, Align: align.Right, Top: 1}
		if mv.QuantityChange.IsNegative() {
			change.Color = colorRed
		}
		rows = append(rows, row.New(7).Add(
			col.New(3).Add(text.New(nonEmpty(mv.ItemName, mv.StockRecordID), props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(mv.Type+" / "+mv.ReferenceType, props.Text{Size: 7, Top: 1, Color: colorGray})),
			col.New(2).Add(text.New(mv.QuantityChange.String(), change)),
			col.New(1).Add(text.New(mv.PreviousQuantity.String(), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(1).Add(text.New(mv.NewQuantity.String(), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(3).Add(text.New(nonEmpty(mv.Note, "—"), props.Text{Size: 7, Top: 1, Left: 2})),
		))
	}
	return rows
}

func summaryRow(movements []*entity.MovementRecord) core.Row {
	var out, in int
	for _, mv := range movements {
		if mv.Type == entity.MovementTypeInbound {
			in++
		} else {
			out++
		}
	}
	return row.New(10).Add(
		col.New(12).Add(text.New(
			fmt.Sprintf("Salidas: %d   |   Reingresos: %d", out, in),
			props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 2},
		)),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
