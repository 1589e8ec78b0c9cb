// Package importer loads bulk profile dumps into the profiles table.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/oggyb/muzz-matchmaker/internal/db"
	"github.com/oggyb/muzz-matchmaker/internal/engine"
)

// FirstImportedID keeps imported ids clear of ids handed out by the chat transport.
const FirstImportedID uint64 = 9_000_000_000

// Columns is the expected header, in order.
var Columns = []string{"age", "city", "bio", "gender", "preference"}

// Store is the slice of ProfileRepository the importer needs.
type Store interface {
	MaxUserID(ctx context.Context) (uint64, error)
	BulkInsert(ctx context.Context, profiles []db.Profile) (int64, error)
}

// Result summarizes one import run.
type Result struct {
	Imported int64
	Skipped  int
	FirstID  uint64
}

// Importer reads CSV rows and inserts them in batches.
type Importer struct {
	store     Store
	log       *slog.Logger
	batchSize int
	now       func() time.Time
}

func New(store Store, log *slog.Logger) *Importer {
	return &Importer{store: store, log: log, batchSize: 500, now: time.Now}
}

// Import consumes r until EOF.
//
// Behavior:
//   - The first row must be the header in Columns order.
//   - Rows with an empty city, an out-of-range age, or an unknown gender or
//     preference are skipped and counted.
//   - Ids start at max(existing+1, FirstImportedID).
func (im *Importer) Import(ctx context.Context, r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, col := range Columns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return nil, fmt.Errorf("unexpected header %v, want %v", header, Columns)
		}
	}

	maxID, err := im.store.MaxUserID(ctx)
	if err != nil {
		return nil, err
	}
	next := max(maxID+1, FirstImportedID)
	res := &Result{FirstID: next}
	now := im.now().UTC()

	batch := make([]db.Profile, 0, im.batchSize)
	flush := func() error {
		n, err := im.store.BulkInsert(ctx, batch)
		if err != nil {
			return err
		}
		res.Imported += n
		batch = batch[:0]
		return nil
	}

	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) && errors.Is(perr.Err, csv.ErrFieldCount) {
				im.log.Warn("skipping malformed row", "line", line)
				res.Skipped++
				continue
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		p, ok := parseRow(rec)
		if !ok {
			res.Skipped++
			continue
		}
		p.UserID = next
		p.Username = fmt.Sprintf("imported%d", next)
		p.LastActive = now
		next++

		batch = append(batch, p)
		if len(batch) == im.batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	im.log.Info("import finished", "imported", res.Imported, "skipped", res.Skipped, "first_id", res.FirstID)
	return res, nil
}

func parseRow(rec []string) (db.Profile, bool) {
	age, err := strconv.Atoi(strings.TrimSpace(rec[0]))
	if err != nil || !engine.ValidAge(age) {
		return db.Profile{}, false
	}
	city := engine.NormalizeCity(rec[1])
	if city == "" {
		return db.Profile{}, false
	}
	gender := db.Gender(strings.ToLower(strings.TrimSpace(rec[3])))
	pref := db.Preference(strings.ToLower(strings.TrimSpace(rec[4])))
	if !gender.Valid() || !pref.Valid() {
		return db.Profile{}, false
	}
	return db.Profile{
		Age:        age,
		City:       city,
		Bio:        strings.TrimSpace(rec[2]),
		Gender:     gender,
		Preference: pref,
	}, true
}
