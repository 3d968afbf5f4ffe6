package invoice

import (
	"time"

	"obrasoft/ms_gestion_core/internal/core/errs"
	"obrasoft/ms_gestion_core/internal/core/invoice"

	"github.com/shopspring/decimal"
)

// ItemRequest is one invoice line as sent by the frontend.
type ItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// CreateInvoiceRequest carries the fields to create an invoice. The frontend
// historically sent amounts under short names (net, iva, total) and later
// under long names (netAmount, taxAmount, totalAmount); both are accepted,
// contradictory duplicates are rejected, and responses always emit the long
// form.
type CreateInvoiceRequest struct {
	Number           string           `json:"number"`
	Type             string           `json:"type"`
	Status           string           `json:"status"`
	Net              *decimal.Decimal `json:"net"`
	NetAmount        *decimal.Decimal `json:"netAmount"`
	Iva              *decimal.Decimal `json:"iva"`
	TaxAmount        *decimal.Decimal `json:"taxAmount"`
	Total            *decimal.Decimal `json:"total"`
	TotalAmount      *decimal.Decimal `json:"totalAmount"`
	RelatedInvoiceID *int64           `json:"relatedInvoiceId"`
	AnnulInvoice     *bool            `json:"annulInvoice"`
	ClientID         *int64           `json:"clientId"`
	ProjectID        *int64           `json:"projectId"`
	CostCenterID     *int64           `json:"costCenterId"`
	IssueDate        string           `json:"issueDate"`
	DueDate          string           `json:"dueDate"`
	Notes            string           `json:"notes"`
	Items            []ItemRequest    `json:"items"`
}

// UpdateInvoiceRequest carries the mutable fields of an invoice. Nil fields
// are left untouched.
type UpdateInvoiceRequest struct {
	Number       *string          `json:"number"`
	Status       *string          `json:"status"`
	Net          *decimal.Decimal `json:"net"`
	NetAmount    *decimal.Decimal `json:"netAmount"`
	Iva          *decimal.Decimal `json:"iva"`
	TaxAmount    *decimal.Decimal `json:"taxAmount"`
	Total        *decimal.Decimal `json:"total"`
	TotalAmount  *decimal.Decimal `json:"totalAmount"`
	ClientID     *int64           `json:"clientId"`
	ProjectID    *int64           `json:"projectId"`
	CostCenterID *int64           `json:"costCenterId"`
	IssueDate    *string          `json:"issueDate"`
	DueDate      *string          `json:"dueDate"`
	Notes        *string          `json:"notes"`
	Items        []ItemRequest    `json:"items"`
}

// PaymentRequest carries the fields to record a payment.
type PaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	Comment   string          `json:"comment"`
}

// coalesceAmount resolves one short/long alias pair. Both set with different
// values is a contradiction and rejected.
func coalesceAmount(short, long *decimal.Decimal, shortName, longName string) (*decimal.Decimal, error) {
	if short != nil && long != nil {
		if !short.Equal(*long) {
			return nil, errs.Validation("los campos %s y %s son contradictorios", shortName, longName)
		}
		return long, nil
	}
	if long != nil {
		return long, nil
	}
	return short, nil
}

// amounts normalizes the aliased amount fields of a create request. A missing
// total is derived from net + iva when either is present.
func (r *CreateInvoiceRequest) amounts() (net, tax, total decimal.Decimal, err error) {
	netPtr, err := coalesceAmount(r.Net, r.NetAmount, "net", "netAmount")
	if err != nil {
		return net, tax, total, err
	}
	taxPtr, err := coalesceAmount(r.Iva, r.TaxAmount, "iva", "taxAmount")
	if err != nil {
		return net, tax, total, err
	}
	totalPtr, err := coalesceAmount(r.Total, r.TotalAmount, "total", "totalAmount")
	if err != nil {
		return net, tax, total, err
	}

	if netPtr != nil {
		net = *netPtr
	}
	if taxPtr != nil {
		tax = *taxPtr
	}
	switch {
	case totalPtr != nil:
		total = *totalPtr
	case netPtr != nil || taxPtr != nil:
		total = net.Add(tax)
	default:
		return net, tax, total, errs.Validation("el monto total es requerido")
	}

	if total.IsNegative() || net.IsNegative() || tax.IsNegative() {
		return net, tax, total, errs.Validation("los montos no pueden ser negativos")
	}

	return net, tax, total, nil
}

// amounts normalizes the aliased amount fields of an update request. All
// three pointers are nil when the request does not touch the amounts.
func (r *UpdateInvoiceRequest) amounts() (net, tax, total *decimal.Decimal, err error) {
	net, err = coalesceAmount(r.Net, r.NetAmount, "net", "netAmount")
	if err != nil {
		return nil, nil, nil, err
	}
	tax, err = coalesceAmount(r.Iva, r.TaxAmount, "iva", "taxAmount")
	if err != nil {
		return nil, nil, nil, err
	}
	total, err = coalesceAmount(r.Total, r.TotalAmount, "total", "totalAmount")
	if err != nil {
		return nil, nil, nil, err
	}
	return net, tax, total, nil
}

const dateLayout = "2006-01-02"

func parseDate(value, field string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, errs.Validation("el campo %s debe tener formato AAAA-MM-DD", field)
	}
	return parsed, nil
}

func buildItems(reqs []ItemRequest) ([]invoice.Item, error) {
	items := make([]invoice.Item, 0, len(reqs))
	for i, it := range reqs {
		if it.Description == "" {
			return nil, errs.Validation("la descripción del ítem %d es requerida", i+1)
		}
		if !it.Quantity.IsPositive() {
			return nil, errs.Validation("la cantidad del ítem %d debe ser mayor que cero", i+1)
		}
		items = append(items, invoice.Item{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Quantity.Mul(it.UnitPrice),
			Position:    i,
		})
	}
	return items, nil
}
