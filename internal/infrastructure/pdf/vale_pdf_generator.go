// Package pdf genera el vale imprimible que acompaña el traslado físico.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: VALE DE <TIPO> + estado │  Referencia + Fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORIGEN / DESTINO / TRANSPORTISTA                           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Descripción | Cajas | Bandejas | Unid | Total │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL UNIDADES                                             │
//	│  QR referencia │ Firmas: entrega / transporta / recibe      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"

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

	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// ValePDFGenerator genera el PDF de un vale con Maroto v2.
type ValePDFGenerator struct{}

// NewValePDFGenerator construye el generador.
func NewValePDFGenerator() *ValePDFGenerator { return &ValePDFGenerator{} }

// GenerateValePDF genera el PDF y devuelve sus bytes.
func (g *ValePDFGenerator) GenerateValePDF(_ context.Context, v *entity.Vale) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("pdf: vale requerido")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Vale "+v.Reference, true).
		WithAuthor(nonEmpty(v.CreatorName, v.CreatorID), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(v))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(v))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range lineRows(v.Lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(v))
	if v.Comment != "" {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("Comentario: "+v.Comment, props.Text{Size: 8, Top: 2, Color: colorGray}),
		)))
	}
	m.AddRows(line.NewRow(6))
	m.AddRows(footerRow(v))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(v *entity.Vale) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("VALE DE "+strings.ToUpper(string(v.Kind)), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Estado: "+string(v.Status), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(v.Reference, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New(fmt.Sprintf("Correlativo del día: %d", v.DailySequenceNumber), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Fecha: "+v.BusinessDate, props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func partiesRow(v *entity.Vale) core.Row {
	block := func(title, name string) core.Col {
		return col.New(4).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(name, "—"), props.Text{Size: 9, Top: 6}),
		)
	}
	return row.New(14).Add(
		block("ORIGEN", nonEmpty(v.OriginName, v.OriginID)),
		block("DESTINO", nonEmpty(v.DestinationName, v.DestinationID)),
		block("TRANSPORTISTA", nonEmpty(v.CarrierName, v.CarrierID)),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Descripción", 4, align.Left),
		h("Cajas", 1, align.Center),
		h("Bandejas", 2, align.Center),
		h("Unid.", 1, align.Center),
		h("Total", 2, align.Right),
	)
}

func lineRows(lines []entity.ValeLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			cell(l.SkuCode, 2, align.Left),
			cell(l.SkuName, 4, align.Left),
			cell(strconv.FormatInt(l.Boxes, 10), 1, align.Center),
			cell(strconv.FormatInt(l.Trays, 10), 2, align.Center),
			cell(strconv.FormatInt(l.Units, 10), 1, align.Center),
			cell(formatThousands(l.TotalUnits), 2, align.Right),
		))
	}
	return result
}

func totalRow(v *entity.Vale) core.Row {
	return row.New(10).Add(
		col.New(8),
		col.New(2).Add(text.New("TOTAL UNIDADES:", props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 2, Right: 2,
		})),
		col.New(2).Add(text.New(formatThousands(v.TotalUnits), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

// footerRow QR con la referencia y líneas de firma.
func footerRow(v *entity.Vale) core.Row {
	signature := func(label string) core.Component {
		return text.New("______________________\n"+label, props.Text{Size: 8, Align: align.Center, Top: 20})
	}
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(v.Reference, props.Rect{Percent: 90, Center: true})),
		col.New(3).Add(signature("Entrega")),
		col.New(3).Add(signature("Transporta")),
		col.New(3).Add(signature("Recibe")),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatThousands inserta puntos de miles. Ej: 1800 → "1.800", -25000 → "-25.000"
func formatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	l := len(s)
	if l <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, l+l/3)
	for i, c := range []byte(s) {
		if i > 0 && (l-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
