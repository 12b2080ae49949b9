package musicdb

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"

	contractx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/contract"
)

var _ contractx.IdentityStore = (*DB)(nil)

// FindByAny resolves a customer by id, phone, or email; any single match is
// enough. Returns nil without error when nothing matches.
func (d *DB) FindByAny(ctx context.Context, customerID, phone, email string) (*contractx.IdentityRecord, error) {
	customerID = strings.TrimSpace(customerID)
	phone = strings.TrimSpace(phone)
	email = strings.TrimSpace(email)
	if customerID == "" && phone == "" && email == "" {
		return nil, nil
	}

	var c Customer
	err := d.bun.NewSelect().
		Model(&c).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			if customerID != "" {
				q = q.WhereOr("id = ?", customerID)
			}
			if phone != "" {
				q = q.WhereOr("phone_number = ?", phone)
			}
			if email != "" {
				q = q.WhereOr("email = ?", email)
			}
			return q
		}).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &contractx.IdentityRecord{
		ID:          c.ID,
		PhoneNumber: c.PhoneNumber,
		Email:       c.Email,
	}, nil
}
