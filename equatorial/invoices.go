package equatorial

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// NoOpenInvoices is the message stored for a contract without invoices.
const NoOpenInvoices = "Não há faturas em aberto para esta conta contrato."

// Invoice is one bill ("fatura") of a contract.
type Invoice struct {
	Number string `json:"numeroFatura"`
	Period string `json:"competencia"` // MM/YYYY
}

// UnmarshalJSON reads the invoice number from numeroFatura, falling back to
// referenciaFatura. An invoice with neither is rejected.
func (i *Invoice) UnmarshalJSON(data []byte) error {
	var raw struct {
		Number    string `json:"numeroFatura"`
		Reference string `json:"referenciaFatura"`
		Period    string `json:"competencia"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	number := raw.Number
	if number == "" {
		number = raw.Reference
	}
	if number == "" {
		return fmt.Errorf("%w: invoice without numeroFatura or referenciaFatura", ErrParse)
	}

	*i = Invoice{Number: number, Period: raw.Period}
	return nil
}

// Outcome is the result of the invoice query for one contract: either
// Invoices or Empty. Callers switch on the concrete type.
type Outcome interface {
	outcome()
}

// Invoices lists the invoices returned for a contract. It may be empty when
// upstream answered with an empty list.
type Invoices []Invoice

// Empty carries the message shown when upstream had nothing for a contract.
type Empty string

func (Invoices) outcome() {}
func (Empty) outcome()    {}

// ContractInvoices pairs a contract number with its outcome.
type ContractInvoices struct {
	Contract string
	Outcome  Outcome
}

// InvoiceSet keeps outcomes in the order the contracts were queried.
type InvoiceSet []ContractInvoices

// Lookup returns the outcome recorded for contract.
func (s InvoiceSet) Lookup(contract string) (Outcome, bool) {
	for _, entry := range s {
		if entry.Contract == contract {
			return entry.Outcome, true
		}
	}
	return nil, false
}

type debitosResponse struct {
	Data struct {
		Faturas *[]Invoice `json:"faturas"`
	} `json:"data"`
}

// FetchOpenInvoices queries the open invoices of each contract in turn.
func (c *Client) FetchOpenInvoices(ctx context.Context, contracts []string) (InvoiceSet, error) {
	return c.FetchInvoices(ctx, contracts, true)
}

// FetchInvoices queries each contract sequentially. A non-200 or non-JSON
// answer maps to Empty; transport failures abort the whole call.
func (c *Client) FetchInvoices(ctx context.Context, contracts []string, openOnly bool) (InvoiceSet, error) {
	set := make(InvoiceSet, 0, len(contracts))
	for _, number := range contracts {
		outcome, err := c.fetchContractInvoices(ctx, number, openOnly)
		if err != nil {
			return nil, err
		}
		set = append(set, ContractInvoices{Contract: number, Outcome: outcome})
	}
	return set, nil
}

func (c *Client) fetchContractInvoices(ctx context.Context, number string, openOnly bool) (Outcome, error) {
	params := url.Values{}
	params.Set("listarEmAberto", strconv.FormatBool(openOnly))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoints.url(DebitosPath+url.PathEscape(number)), nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = params.Encode()

	resp, err := c.do(req, "Buscando faturas da conta "+number)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || !isJSON(resp.Header.Get("Content-Type")) {
		if c.Debug {
			log.Debugf("No invoices for contract %s (status %d, content type %q)", number, resp.StatusCode, resp.Header.Get("Content-Type"))
		}
		return Empty(NoOpenInvoices), nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading invoices of contract %s: %v", ErrNetwork, number, err)
	}

	var body debitosResponse
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("%w: invoices of contract %s: %v", ErrParse, number, err)
	}
	if body.Data.Faturas == nil {
		return nil, fmt.Errorf("%w: invoices of contract %s: missing data.faturas", ErrParse, number)
	}
	return Invoices(*body.Data.Faturas), nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}
