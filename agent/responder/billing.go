package responder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/contract"
	statex "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/state"
)

// Billing answers invoice questions, always scoped to the session's resolved
// customer identity.
type Billing struct {
	proc         contractx.TextProcessor
	store        contractx.BillingStore
	selectPrompt string
	answerPrompt string
}

var _ contractx.Responder = (*Billing)(nil)

type billingQuery struct {
	Operation string `json:"operation,omitempty"`
	InvoiceID string `json:"invoice_id,omitempty"`
}

func NewBilling(proc contractx.TextProcessor, store contractx.BillingStore, selectPrompt, answerPrompt string) (*Billing, error) {
	if proc == nil || store == nil {
		return nil, fmt.Errorf("%w: billing responder needs a processor and a store", contractx.ErrValidation)
	}
	return &Billing{
		proc:         proc,
		store:        store,
		selectPrompt: selectPrompt,
		answerPrompt: answerPrompt,
	}, nil
}

func (b *Billing) Handle(ctx context.Context, sess *statex.Session, task string) (string, error) {
	if sess == nil || strings.TrimSpace(sess.CustomerID) == "" {
		return "", contractx.ErrIdentityRequired
	}

	var query billingQuery
	turns := []statex.Turn{{Role: statex.RoleUser, Content: task}}
	if err := b.proc.CompleteStructured(ctx, b.selectPrompt, turns, &query); err != nil {
		return "", err
	}

	rows, err := b.lookup(ctx, sess.CustomerID, query)
	if err != nil {
		return "", err
	}
	if rows == nil {
		return noDataReply, nil
	}

	grounding, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("%w: marshal invoice rows: %v", contractx.ErrValidation, err)
	}

	payload := fmt.Sprintf("Request:\n%s\n\nDatabase rows:\n%s", task, grounding)
	return b.proc.Complete(ctx, b.answerPrompt, []statex.Turn{
		{Role: statex.RoleUser, Content: payload},
	})
}

func (b *Billing) lookup(ctx context.Context, customerID string, q billingQuery) (any, error) {
	switch strings.TrimSpace(q.Operation) {
	case "invoices_by_date":
		invoices, err := b.store.InvoicesByDate(ctx, customerID)
		return nonEmpty(invoices), err
	case "invoices_by_amount":
		invoices, err := b.store.InvoicesByAmount(ctx, customerID)
		return nonEmpty(invoices), err
	case "employee_by_invoice":
		invoiceID := strings.TrimSpace(q.InvoiceID)
		if invoiceID == "" {
			return nil, fmt.Errorf("%w: employee_by_invoice requires invoice_id", contractx.ErrSchemaViolation)
		}
		name, err := b.store.EmployeeByInvoice(ctx, invoiceID, customerID)
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, nil
		}
		return map[string]string{"invoice_id": invoiceID, "employee_name": name}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported billing operation=%q", contractx.ErrSchemaViolation, q.Operation)
	}
}
