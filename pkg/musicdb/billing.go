package musicdb

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	contractx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/contract"
)

var _ contractx.BillingStore = (*DB)(nil)

func (d *DB) InvoicesByDate(ctx context.Context, customerID string) ([]contractx.Invoice, error) {
	return d.invoices(ctx, customerID, "date DESC")
}

func (d *DB) InvoicesByAmount(ctx context.Context, customerID string) ([]contractx.Invoice, error) {
	return d.invoices(ctx, customerID, "amount DESC")
}

// EmployeeByInvoice returns the support employee on an invoice, or "" when
// the invoice does not exist or belongs to a different customer.
func (d *DB) EmployeeByInvoice(ctx context.Context, invoiceID, customerID string) (string, error) {
	var employee string
	err := d.bun.NewSelect().
		Model((*InvoiceRow)(nil)).
		Column("employee_name").
		Where("id = ?", strings.TrimSpace(invoiceID)).
		Where("customer_id = ?", customerID).
		Limit(1).
		Scan(ctx, &employee)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return employee, nil
}

func (d *DB) invoices(ctx context.Context, customerID, order string) ([]contractx.Invoice, error) {
	var rows []InvoiceRow
	err := d.bun.NewSelect().
		Model(&rows).
		Where("customer_id = ?", customerID).
		OrderExpr(order).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]contractx.Invoice, 0, len(rows))
	for _, r := range rows {
		out = append(out, contractx.Invoice{
			ID:           r.ID,
			CustomerID:   r.CustomerID,
			Amount:       r.Amount,
			Date:         r.Date,
			EmployeeName: r.EmployeeName,
		})
	}
	return out, nil
}
