package pdf

import (
	"context"
	"io"

	invoicedomain "github.com/predialis/predialis/internal/invoice/domain"
)

// Renderer turns a priced invoice into a document artifact. The billing
// core has no dependency on the document format; it only hands over the
// composed invoice.
type Renderer interface {
	RenderInvoice(ctx context.Context, invoice *invoicedomain.PricedInvoice) (io.Reader, error)
}
