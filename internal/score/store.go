// Package score judges taps, keeps the tallies of a round and stores
// finished rounds and analysed beat maps.
package score

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// History is one finished round.
type History struct {
	ID     string // session id
	Sum    string // track hash, empty for live rounds
	Played time.Time
	BPM    float64
	Taps   []float64
}

// Store persists analysed beat maps and round history.
type Store interface {
	Init(ctx context.Context) error
	Deinit()

	// SaveHistory stores the taps of a finished round.
	SaveHistory(ctx context.Context, h *History) error
	// LoadHistory returns the rounds played on a track, oldest first.
	LoadHistory(ctx context.Context, sum string) ([]History, error)

	// SaveBeatMap caches the onsets and tempo of a track.
	SaveBeatMap(ctx context.Context, sum string, onsets []float64, bpm float64) error
	// LoadBeatMap returns the cached onsets and tempo of a track.
	// Returns ErrNotFound if the track was never analysed.
	LoadBeatMap(ctx context.Context, sum string) ([]float64, float64, error)
}

// SQLiteStore is a Store backed by a sqlite file.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

const schema = `
create table if not exists history
  (
	  id integer not null primary key,
	  session text not null,
	  sum text,
	  played integer,
	  bpm real,
	  taps blob
  );
create table if not exists beatmaps
  (
	  sum text not null primary key,
	  bpm real,
	  onsets blob
  );
`

func (s *SQLiteStore) Init(ctx context.Context) error {
	db, err := sql.Open("sqlite3", s.path)
	if nil != err {
		return errors.Wrapf(err, "open %s", s.path)
	}
	if _, err = db.ExecContext(ctx, schema); nil != err {
		db.Close()
		return errors.Wrap(err, "create tables")
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) Deinit() {
	if nil != s.db {
		s.db.Close()
		s.db = nil
	}
}

func (s *SQLiteStore) SaveHistory(ctx context.Context, h *History) error {
	if nil == s.db {
		return ErrNotOpened
	}
	data, err := json.Marshal(compactTimes(h.Taps))
	if nil != err {
		return errors.Wrap(err, "marshal taps")
	}
	_, err = s.db.ExecContext(ctx,
		"insert into history(session, sum, played, bpm, taps) values(?, ?, ?, ?, ?)",
		h.ID, h.Sum, h.Played.UnixMilli(), h.BPM, data)
	return errors.Wrapf(err, "save history %s", h.ID)
}

func (s *SQLiteStore) LoadHistory(ctx context.Context, sum string) ([]History, error) {
	if nil == s.db {
		return nil, ErrNotOpened
	}
	rows, err := s.db.QueryContext(ctx,
		"select session, sum, played, bpm, taps from history where sum = ? order by id", sum)
	if nil != err {
		return nil, errors.Wrapf(err, "load history %s", sum)
	}
	defer rows.Close()

	histories := []History{}
	for rows.Next() {
		var (
			h      History
			played int64
			data   []byte
		)
		if err := rows.Scan(&h.ID, &h.Sum, &played, &h.BPM, &data); nil != err {
			return nil, errors.Wrap(err, "scan history")
		}
		var taps TimesCompact
		if err := json.Unmarshal(data, &taps); nil != err {
			return nil, errors.Wrapf(err, "unmarshal taps of %s", h.ID)
		}
		h.Played = time.UnixMilli(played)
		h.Taps = uncompactTimes(taps)
		histories = append(histories, h)
	}
	return histories, errors.Wrap(rows.Err(), "read history")
}

func (s *SQLiteStore) SaveBeatMap(ctx context.Context, sum string, onsets []float64, bpm float64) error {
	if nil == s.db {
		return ErrNotOpened
	}
	data, err := json.Marshal(compactTimes(onsets))
	if nil != err {
		return errors.Wrap(err, "marshal onsets")
	}
	_, err = s.db.ExecContext(ctx,
		"insert or replace into beatmaps(sum, bpm, onsets) values(?, ?, ?)", sum, bpm, data)
	return errors.Wrapf(err, "save beat map %s", sum)
}

func (s *SQLiteStore) LoadBeatMap(ctx context.Context, sum string) ([]float64, float64, error) {
	if nil == s.db {
		return nil, 0, ErrNotOpened
	}
	var (
		bpm  float64
		data []byte
	)
	err := s.db.QueryRowContext(ctx, "select bpm, onsets from beatmaps where sum = ?", sum).Scan(&bpm, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if nil != err {
		return nil, 0, errors.Wrapf(err, "load beat map %s", sum)
	}
	var onsets TimesCompact
	if err := json.Unmarshal(data, &onsets); nil != err {
		return nil, 0, errors.Wrapf(err, "unmarshal onsets of %s", sum)
	}
	return uncompactTimes(onsets), bpm, nil
}
