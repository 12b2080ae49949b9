package musicdb

import (
	"context"
	"fmt"
)

// Seed loads the sample dataset: the three demo customers with their
// invoices, and a small music catalog. Existing rows are left untouched, so
// seeding is safe to repeat on every start.
func (d *DB) Seed(ctx context.Context) error {
	customers := []Customer{
		{ID: "customer_1", PhoneNumber: "+55 (12) 3923-5555", Email: "customer1@example.com"},
		{ID: "customer_2", PhoneNumber: "+55 (21) 99876-5432", Email: "customer2@example.com"},
		{ID: "customer_3", PhoneNumber: "+55 (11) 91234-5678", Email: "customer3@example.com"},
	}
	invoices := []InvoiceRow{
		{ID: "invoice_1", CustomerID: "customer_1", Amount: 150.75, Date: "2023-10-01", EmployeeName: "Alice"},
		{ID: "invoice_2", CustomerID: "customer_2", Amount: 200.00, Date: "2023-10-05", EmployeeName: "Bob"},
		{ID: "invoice_3", CustomerID: "customer_3", Amount: 75.50, Date: "2023-10-08", EmployeeName: "Charlie"},
		{ID: "invoice_4", CustomerID: "customer_1", Amount: 50.25, Date: "2023-10-10", EmployeeName: "Alice"},
	}
	artists := []Artist{
		{ID: 1, Name: "AC/DC"},
		{ID: 2, Name: "Miles Davis"},
		{ID: 3, Name: "Queen"},
		{ID: 4, Name: "Antonio Carlos Jobim"},
	}
	genres := []Genre{
		{ID: 1, Name: "Rock"},
		{ID: 2, Name: "Jazz"},
		{ID: 3, Name: "Metal"},
		{ID: 4, Name: "Bossa Nova"},
	}
	albums := []Album{
		{ID: 1, ArtistID: 1, Title: "Back In Black"},
		{ID: 2, ArtistID: 2, Title: "Kind Of Blue"},
		{ID: 3, ArtistID: 3, Title: "A Night At The Opera"},
		{ID: 4, ArtistID: 4, Title: "Wave"},
	}
	tracks := []Track{
		{ID: 1, AlbumID: 1, GenreID: 1, Name: "Hells Bells"},
		{ID: 2, AlbumID: 1, GenreID: 1, Name: "Back In Black"},
		{ID: 3, AlbumID: 2, GenreID: 2, Name: "So What"},
		{ID: 4, AlbumID: 2, GenreID: 2, Name: "Blue In Green"},
		{ID: 5, AlbumID: 3, GenreID: 1, Name: "Bohemian Rhapsody"},
		{ID: 6, AlbumID: 4, GenreID: 4, Name: "Wave"},
	}

	seeds := []any{&customers, &invoices, &artists, &genres, &albums, &tracks}
	for _, rows := range seeds {
		if _, err := d.bun.NewInsert().Model(rows).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
			return fmt.Errorf("musicdb: seed %T: %w", rows, err)
		}
	}
	return nil
}
