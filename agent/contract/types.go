package contract

// TurnResult is the outcome of processing one user turn: either a reply or a
// suspension asking the user for more input before the workflow can continue.
type TurnResult struct {
	Reply     string `json:"reply,omitempty"`
	Suspended bool   `json:"suspended,omitempty"`
	Prompt    string `json:"prompt,omitempty"`
}

// IdentityClaim is the structured extraction of whatever identifying details
// the customer has provided. Every field is optional.
type IdentityClaim struct {
	CustomerID  string `json:"customer_id,omitempty"`
	PhoneNumber string `json:"customer_phone_number,omitempty"`
	Email       string `json:"customer_email,omitempty"`
}

// Empty reports whether the claim carries no usable field.
func (c IdentityClaim) Empty() bool {
	return c.CustomerID == "" && c.PhoneNumber == "" && c.Email == ""
}

// IdentityRecord is a row in the external customer identity store.
type IdentityRecord struct {
	ID          string `json:"customer_id"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

// Invoice is a row in the external billing store.
type Invoice struct {
	ID           string  `json:"invoice_id"`
	CustomerID   string  `json:"customer_id"`
	Amount       float64 `json:"amount"`
	Date         string  `json:"date"`
	EmployeeName string  `json:"employee_name"`
}

// AlbumRow is a catalog lookup result.
type AlbumRow struct {
	AlbumTitle string `json:"album_title"`
	ArtistName string `json:"artist_name"`
}

// TrackRow is a catalog lookup result.
type TrackRow struct {
	TrackName  string `json:"track_name"`
	AlbumTitle string `json:"album_title"`
	ArtistName string `json:"artist_name"`
}

// GenreTrackRow is a catalog lookup result for genre queries.
type GenreTrackRow struct {
	TrackName  string `json:"track_name"`
	GenreName  string `json:"genre_name"`
	AlbumTitle string `json:"album_title"`
	ArtistName string `json:"artist_name"`
}

// Task is one unit of delegated work produced by the dispatcher.
type Task struct {
	Responder string `json:"responder"`
	Request   string `json:"request"`
}

// DispatchPlan is the dispatcher's structured decision for the current turn.
// Reply is only set when no delegation is needed (greetings, smalltalk).
type DispatchPlan struct {
	Tasks []Task `json:"tasks,omitempty"`
	Reply string `json:"reply,omitempty"`
}
