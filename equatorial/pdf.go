package equatorial

import (
	"context"
	"fmt"
	"net/url"
)

// PdfPayload is the base64 encoded invoice document.
type PdfPayload struct {
	Base64Data string
}

type segundaViaResponse struct {
	Data *struct {
		Base64 *string `json:"base64"`
	} `json:"data"`
}

// FetchInvoicePdf requests the duplicate copy ("segunda via") of an invoice.
func (c *Client) FetchInvoicePdf(ctx context.Context, invoiceNumber string, token Token) (PdfPayload, error) {
	params := url.Values{}
	params.Set("showUrl", "true")

	var body segundaViaResponse
	if err := c.getJSON(ctx, SegundaVia+url.PathEscape(invoiceNumber), params, &token, "Baixando fatura "+invoiceNumber, &body); err != nil {
		return PdfPayload{}, err
	}
	if body.Data == nil || body.Data.Base64 == nil || *body.Data.Base64 == "" {
		return PdfPayload{}, fmt.Errorf("%w: invoice %s: missing data.base64", ErrParse, invoiceNumber)
	}
	return PdfPayload{Base64Data: *body.Data.Base64}, nil
}
