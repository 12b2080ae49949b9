package responder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/contract"
	statex "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/state"
)

// noDataReply is returned whenever a lookup comes back empty, instead of
// letting the model invent results.
const noDataReply = "No data found"

// Catalog answers music catalog questions: artists, albums, tracks, genres.
type Catalog struct {
	proc         contractx.TextProcessor
	store        contractx.CatalogStore
	selectPrompt string
	answerPrompt string
}

var _ contractx.Responder = (*Catalog)(nil)

type catalogQuery struct {
	Operation string `json:"operation,omitempty"`
	Argument  string `json:"argument,omitempty"`
}

func NewCatalog(proc contractx.TextProcessor, store contractx.CatalogStore, selectPrompt, answerPrompt string) (*Catalog, error) {
	if proc == nil || store == nil {
		return nil, fmt.Errorf("%w: catalog responder needs a processor and a store", contractx.ErrValidation)
	}
	return &Catalog{
		proc:         proc,
		store:        store,
		selectPrompt: selectPrompt,
		answerPrompt: answerPrompt,
	}, nil
}

func (c *Catalog) Handle(ctx context.Context, sess *statex.Session, task string) (string, error) {
	var query catalogQuery
	turns := []statex.Turn{taskTurn(task, sess)}
	if err := c.proc.CompleteStructured(ctx, c.selectPrompt, turns, &query); err != nil {
		return "", err
	}

	rows, err := c.lookup(ctx, query)
	if err != nil {
		return "", err
	}
	if rows == nil {
		return noDataReply, nil
	}

	grounding, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("%w: marshal catalog rows: %v", contractx.ErrValidation, err)
	}

	payload := fmt.Sprintf("Request:\n%s\n\nDatabase rows:\n%s", task, grounding)
	return c.proc.Complete(ctx, c.answerPrompt, []statex.Turn{
		{Role: statex.RoleUser, Content: payload},
	})
}

// lookup runs the selected operation. A nil result means nothing matched.
func (c *Catalog) lookup(ctx context.Context, q catalogQuery) (any, error) {
	arg := strings.TrimSpace(q.Argument)

	switch strings.TrimSpace(q.Operation) {
	case "albums_by_artist":
		rows, err := c.store.AlbumsByArtist(ctx, arg)
		return nonEmpty(rows), err
	case "tracks_by_artist":
		rows, err := c.store.TracksByArtist(ctx, arg)
		return nonEmpty(rows), err
	case "songs_by_genre":
		rows, err := c.store.SongsByGenre(ctx, arg)
		return nonEmpty(rows), err
	case "search_tracks":
		rows, err := c.store.SearchTracks(ctx, arg)
		return nonEmpty(rows), err
	case "search_albums":
		rows, err := c.store.SearchAlbums(ctx, arg)
		return nonEmpty(rows), err
	case "list_artists":
		names, err := c.store.AllArtists(ctx)
		return nonEmpty(names), err
	case "list_genres":
		names, err := c.store.AllGenres(ctx)
		return nonEmpty(names), err
	case "list_albums":
		titles, err := c.store.AllAlbums(ctx)
		return nonEmpty(titles), err
	case "check_track":
		return c.existence(ctx, c.store.HasTrack, arg, "track")
	case "check_album":
		return c.existence(ctx, c.store.HasAlbum, arg, "album")
	case "check_artist":
		return c.existence(ctx, c.store.HasArtist, arg, "artist")
	default:
		return nil, fmt.Errorf("%w: unsupported catalog operation=%q", contractx.ErrSchemaViolation, q.Operation)
	}
}

func (c *Catalog) existence(ctx context.Context, check func(context.Context, string) (bool, error), arg, kind string) (any, error) {
	found, err := check(ctx, arg)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return map[string]any{kind: arg, "exists": true}, nil
}

func nonEmpty[T any](rows []T) any {
	if len(rows) == 0 {
		return nil
	}
	return rows
}

// taskTurn gives the responder the sub-task plus the loaded preference
// digest, so recommendations can lean on prior visits.
func taskTurn(task string, sess *statex.Session) statex.Turn {
	content := task
	if sess != nil && sess.LoadedPreferences != "" {
		content = task + "\n\n" + sess.LoadedPreferences
	}
	return statex.Turn{Role: statex.RoleUser, Content: content}
}
