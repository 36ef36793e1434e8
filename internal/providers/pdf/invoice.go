package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	invoicedomain "github.com/predialis/predialis/internal/invoice/domain"
	"github.com/predialis/predialis/internal/invoice/format"
)

type marotoRenderer struct{}

func New() Renderer {
	return &marotoRenderer{}
}

func (r *marotoRenderer) RenderInvoice(ctx context.Context, invoice *invoicedomain.PricedInvoice) (io.Reader, error) {
	if invoice == nil {
		return nil, fmt.Errorf("nil invoice")
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(10,
		text.NewCol(12, "Demonstrativo de Cobrança", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Unidade: "+invoice.Unit, props.Text{Top: 0}),
			text.New("Responsável: "+invoice.Resident, props.Text{Top: 4}),
			text.New("Referência: "+invoice.ReferenceDate.Format("01/2006"), props.Text{Top: 8}),
			text.New("Vencimento: "+invoice.DueDate.Format("02/01/2006"), props.Text{Top: 12}),
		),
		col.New(6),
	)

	// Table Header
	m.AddRow(10,
		text.NewCol(5, "Descrição", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Leituras", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Consumo", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Valor", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	m.AddRow(1, col.New(12))

	for _, line := range invoice.Lines {
		m.AddRow(10,
			text.NewCol(5, line.Description, props.Text{Size: 9}),
			text.NewCol(3, readingsCell(line), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, consumptionCell(line), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, format.BRL(line.Amount), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Subtotal", props.Text{Size: 9}),
		text.NewCol(2, format.BRL(invoice.Subtotal), props.Text{Size: 9, Align: align.Right}),
	)
	if invoice.DiscountAmount > 0 {
		m.AddRow(10,
			col.New(8),
			text.NewCol(2, "Desconto", props.Text{Size: 9}),
			text.NewCol(2, "-"+format.BRL(invoice.DiscountAmount), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, format.BRL(invoice.Total), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, warning := range invoice.Warnings {
		m.AddRow(8,
			text.NewCol(12, "Obs: "+warning, props.Text{Size: 8}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

func readingsCell(line invoicedomain.ChargeLine) string {
	if line.Kind != invoicedomain.ChargeConsumption {
		return ""
	}
	if line.InitialReading {
		if line.CurrentReading != nil {
			return fmt.Sprintf("inicial %s", format.CubicMeters(*line.CurrentReading))
		}
		return "inicial"
	}
	if line.PreviousReading == nil || line.CurrentReading == nil {
		return ""
	}
	return fmt.Sprintf("%s > %s", format.CubicMeters(*line.PreviousReading), format.CubicMeters(*line.CurrentReading))
}

func consumptionCell(line invoicedomain.ChargeLine) string {
	if line.Kind != invoicedomain.ChargeConsumption || line.InitialReading {
		return ""
	}
	return format.CubicMeters(line.Consumption)
}
