package musicdb

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	contractx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/contract"
)

var _ contractx.CatalogStore = (*DB)(nil)

func (d *DB) AlbumsByArtist(ctx context.Context, artist string) ([]contractx.AlbumRow, error) {
	var rows []contractx.AlbumRow
	err := d.bun.NewSelect().
		ColumnExpr("al.title AS album_title").
		ColumnExpr("ar.name AS artist_name").
		TableExpr("albums AS al").
		Join("JOIN artists AS ar ON ar.id = al.artist_id").
		Where("lower(ar.name) = lower(?)", strings.TrimSpace(artist)).
		OrderExpr("al.title").
		Limit(lookupLimit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *DB) TracksByArtist(ctx context.Context, artist string) ([]contractx.TrackRow, error) {
	var rows []contractx.TrackRow
	err := d.trackQuery().
		Where("lower(ar.name) = lower(?)", strings.TrimSpace(artist)).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *DB) SongsByGenre(ctx context.Context, genre string) ([]contractx.GenreTrackRow, error) {
	var rows []contractx.GenreTrackRow
	err := d.bun.NewSelect().
		ColumnExpr("t.name AS track_name").
		ColumnExpr("g.name AS genre_name").
		ColumnExpr("al.title AS album_title").
		ColumnExpr("ar.name AS artist_name").
		TableExpr("tracks AS t").
		Join("JOIN genres AS g ON g.id = t.genre_id").
		Join("JOIN albums AS al ON al.id = t.album_id").
		Join("JOIN artists AS ar ON ar.id = al.artist_id").
		Where("lower(g.name) = lower(?)", strings.TrimSpace(genre)).
		OrderExpr("t.name").
		Limit(lookupLimit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *DB) SearchTracks(ctx context.Context, term string) ([]contractx.TrackRow, error) {
	var rows []contractx.TrackRow
	if err := d.searchTracksQuery(term).Scan(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *DB) SearchAlbums(ctx context.Context, term string) ([]contractx.AlbumRow, error) {
	var rows []contractx.AlbumRow
	if err := d.searchAlbumsQuery(term).Scan(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// searchTracksQuery matches the term against track name, album title, and
// artist name, so a search for an artist still surfaces their tracks.
func (d *DB) searchTracksQuery(term string) *bun.SelectQuery {
	pattern := contains(term)
	return d.trackQuery().
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("t.name ILIKE ?", pattern).
				WhereOr("al.title ILIKE ?", pattern).
				WhereOr("ar.name ILIKE ?", pattern)
		})
}

func (d *DB) searchAlbumsQuery(term string) *bun.SelectQuery {
	pattern := contains(term)
	return d.bun.NewSelect().
		ColumnExpr("al.title AS album_title").
		ColumnExpr("ar.name AS artist_name").
		TableExpr("albums AS al").
		Join("JOIN artists AS ar ON ar.id = al.artist_id").
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("al.title ILIKE ?", pattern).
				WhereOr("ar.name ILIKE ?", pattern)
		}).
		OrderExpr("al.title").
		Limit(lookupLimit)
}

func (d *DB) AllArtists(ctx context.Context) ([]string, error) {
	return d.nameColumn(ctx, (*Artist)(nil), "name")
}

func (d *DB) AllGenres(ctx context.Context) ([]string, error) {
	return d.nameColumn(ctx, (*Genre)(nil), "name")
}

func (d *DB) AllAlbums(ctx context.Context) ([]string, error) {
	return d.nameColumn(ctx, (*Album)(nil), "title")
}

func (d *DB) HasTrack(ctx context.Context, name string) (bool, error) {
	return d.bun.NewSelect().
		Model((*Track)(nil)).
		Where("lower(name) = lower(?)", strings.TrimSpace(name)).
		Exists(ctx)
}

func (d *DB) HasAlbum(ctx context.Context, title string) (bool, error) {
	return d.bun.NewSelect().
		Model((*Album)(nil)).
		Where("lower(title) = lower(?)", strings.TrimSpace(title)).
		Exists(ctx)
}

func (d *DB) HasArtist(ctx context.Context, name string) (bool, error) {
	return d.bun.NewSelect().
		Model((*Artist)(nil)).
		Where("lower(name) = lower(?)", strings.TrimSpace(name)).
		Exists(ctx)
}

func (d *DB) trackQuery() *bun.SelectQuery {
	return d.bun.NewSelect().
		ColumnExpr("t.name AS track_name").
		ColumnExpr("al.title AS album_title").
		ColumnExpr("ar.name AS artist_name").
		TableExpr("tracks AS t").
		Join("JOIN albums AS al ON al.id = t.album_id").
		Join("JOIN artists AS ar ON ar.id = al.artist_id").
		OrderExpr("t.name").
		Limit(lookupLimit)
}

func (d *DB) nameColumn(ctx context.Context, model any, column string) ([]string, error) {
	var names []string
	err := d.bun.NewSelect().
		Model(model).
		Column(column).
		OrderExpr(column).
		Limit(lookupLimit).
		Scan(ctx, &names)
	if err != nil {
		return nil, err
	}
	return names, nil
}

func contains(term string) string {
	return "%" + strings.TrimSpace(term) + "%"
}
