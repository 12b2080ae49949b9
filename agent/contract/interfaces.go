package contract

import (
	"context"

	statex "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/state"
)

// TextProcessor turns text plus instructions into either free text or a
// structured record. Calls are blocking and carry no internal retry; failures
// are handled at the stage boundary.
type TextProcessor interface {
	Complete(ctx context.Context, system string, turns []statex.Turn) (string, error)

	// CompleteStructured decodes the model's JSON object into out, a pointer
	// to a shape whose fields are all optional.
	CompleteStructured(ctx context.Context, system string, turns []statex.Turn, out any) error
}

// Responder handles one category of user request and returns reply text.
type Responder interface {
	Handle(ctx context.Context, sess *statex.Session, task string) (string, error)
}

// IdentityStore resolves customers by any provided field (OR semantics).
// A nil record with a nil error means no match.
type IdentityStore interface {
	FindByAny(ctx context.Context, customerID, phone, email string) (*IdentityRecord, error)
}

// CatalogStore is the read-only music catalog. Implementations cap result
// sets at five rows.
type CatalogStore interface {
	AlbumsByArtist(ctx context.Context, artist string) ([]AlbumRow, error)
	TracksByArtist(ctx context.Context, artist string) ([]TrackRow, error)
	SongsByGenre(ctx context.Context, genre string) ([]GenreTrackRow, error)
	SearchTracks(ctx context.Context, term string) ([]TrackRow, error)
	SearchAlbums(ctx context.Context, term string) ([]AlbumRow, error)
	AllArtists(ctx context.Context) ([]string, error)
	AllGenres(ctx context.Context) ([]string, error)
	AllAlbums(ctx context.Context) ([]string, error)
	HasTrack(ctx context.Context, name string) (bool, error)
	HasAlbum(ctx context.Context, title string) (bool, error)
	HasArtist(ctx context.Context, name string) (bool, error)
}

// BillingStore is the read-only invoice store, always scoped to a customer.
type BillingStore interface {
	InvoicesByDate(ctx context.Context, customerID string) ([]Invoice, error)
	// InvoicesByAmount sorts by total amount descending. The operation the
	// upstream product called "unit price" has always sorted by amount, so
	// the name reflects the actual behavior.
	InvoicesByAmount(ctx context.Context, customerID string) ([]Invoice, error)
	EmployeeByInvoice(ctx context.Context, invoiceID, customerID string) (string, error)
}
