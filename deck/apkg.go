// Package deck writes people as an Anki .apkg package: a zip holding a
// SQLite collection, a media index and the face photos.
package deck

import (
	"archive/zip"
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/facecards/models"

	_ "modernc.org/sqlite"
)

// Filename is the download name of an exported deck.
const Filename = "names_and_faces.apkg"

// fieldSeparator joins note fields in the notes table.
const fieldSeparator = "\x1f"

// MediaSource resolves a stored photo name to a file on disk.
type MediaSource interface {
	Path(name string) (string, error)
}

// Note is one person rendered into note fields.
type Note struct {
	GUID   string
	Fields []string
	// Cards holds the template ordinals that produce a card.
	Cards []int
}

// BuildNote renders p into the fields of the note type. Toggle fields are
// "1" only when the direction is enabled and the person has what the
// direction needs.
func BuildNote(p *models.Person) Note {
	hasFace := p.FaceFilename != ""
	hasContext := p.HasContext()

	fields := make([]string, len(fieldNames))
	fields[fieldName] = html.EscapeString(p.Name)
	if hasFace {
		fields[fieldFace] = fmt.Sprintf(`<img src="%s">`, html.EscapeString(p.FaceFilename))
	}
	fields[fieldContext] = html.EscapeString(p.Context)
	fields[fieldFaceToName] = flag(p.CardFaceToName && hasFace)
	fields[fieldNameToFace] = flag(p.CardNameToFace)
	fields[fieldNameFaceToContext] = flag(p.CardNameFaceToContext && hasFace && hasContext)
	fields[fieldContextToPerson] = flag(p.CardContextToPerson && hasContext)

	var cards []int
	for ord, t := range templates {
		if requiredPresent(fields, t.Required) {
			cards = append(cards, ord)
		}
	}
	return Note{GUID: GUID(p.ID), Fields: fields, Cards: cards}
}

func requiredPresent(fields []string, required []int) bool {
	for _, idx := range required {
		if fields[idx] == "" {
			return false
		}
	}
	return true
}

func flag(on bool) string {
	if on {
		return "1"
	}
	return ""
}

// Write builds the package for people and streams it to w. Photos that are
// missing on disk are left out of the package; their notes still reference
// them so a later import with the file present fills them in.
func Write(ctx context.Context, w io.Writer, people []*models.Person, media MediaSource) error {
	tmp, err := os.MkdirTemp("", "deck-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	// ── 1. Collection database ──────────────────────────────────────
	colPath := filepath.Join(tmp, "collection.anki2")
	if err := writeCollection(ctx, colPath, people, time.Now()); err != nil {
		return err
	}

	// ── 2. Media index ──────────────────────────────────────────────
	files := collectMedia(people, media)
	index := make(map[string]string, len(files))
	for i, f := range files {
		index[strconv.Itoa(i)] = f.name
	}

	// ── 3. Zip ──────────────────────────────────────────────────────
	zw := zip.NewWriter(w)
	if err := addFile(zw, "collection.anki2", colPath); err != nil {
		return err
	}
	mw, err := zw.Create("media")
	if err != nil {
		return fmt.Errorf("write media index: %w", err)
	}
	if err := json.NewEncoder(mw).Encode(index); err != nil {
		return fmt.Errorf("write media index: %w", err)
	}
	for i, f := range files {
		if err := addFile(zw, strconv.Itoa(i), f.path); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish package: %w", err)
	}

	slog.Info("deck exported", "people", len(people), "media", len(files))
	return nil
}

type mediaFile struct {
	name string
	path string
}

func collectMedia(people []*models.Person, media MediaSource) []mediaFile {
	if media == nil {
		return nil
	}
	seen := make(map[string]bool)
	var files []mediaFile
	for _, p := range people {
		if p.FaceFilename == "" || seen[p.FaceFilename] {
			continue
		}
		seen[p.FaceFilename] = true
		path, err := media.Path(p.FaceFilename)
		if err != nil {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			slog.Warn("face photo missing, exporting without it", "person", p.ID, "file", p.FaceFilename)
			continue
		}
		files = append(files, mediaFile{name: p.FaceFilename, path: path})
	}
	return files
}

func addFile(zw *zip.Writer, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	dst, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	return nil
}

func writeCollection(ctx context.Context, path string, people []*models.Person, now time.Time) error {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open collection: %w", err)
	}
	defer conn.Close()
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, collectionSchema); err != nil {
		return fmt.Errorf("create collection schema: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin collection: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := insertCollectionRow(ctx, tx, now); err != nil {
		return err
	}

	// Note and card ids are millisecond timestamps and must be unique.
	nextID := now.UnixMilli()
	mod := now.Unix()
	for pos, p := range people {
		note := BuildNote(p)
		noteID := nextID
		nextID++

		sortField := note.Fields[fieldName]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
			 VALUES (?, ?, ?, ?, -1, '', ?, ?, ?, 0, '')`,
			noteID, note.GUID, ModelID, mod, strings.Join(note.Fields, fieldSeparator), sortField, checksum(sortField),
		); err != nil {
			return fmt.Errorf("insert note for %s: %w", p.ID, err)
		}

		for _, ord := range note.Cards {
			cardID := nextID
			nextID++
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data)
				 VALUES (?, ?, ?, ?, ?, -1, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')`,
				cardID, noteID, DeckID, ord, mod, pos+1,
			); err != nil {
				return fmt.Errorf("insert card for %s: %w", p.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit collection: %w", err)
	}
	return nil
}

func insertCollectionRow(ctx context.Context, tx *sql.Tx, now time.Time) error {
	mod := now.Unix()
	conf, err := collectionConfJSON()
	if err != nil {
		return err
	}
	mdls, err := modelsJSON(mod)
	if err != nil {
		return err
	}
	dks, err := decksJSON(mod)
	if err != nil {
		return err
	}
	dconf, err := deckConfJSON(mod)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
		 VALUES (1, ?, ?, ?, 11, 0, 0, 0, ?, ?, ?, ?, '{}')`,
		mod, now.UnixMilli(), now.UnixMilli(), conf, mdls, dks, dconf,
	)
	if err != nil {
		return fmt.Errorf("insert collection row: %w", err)
	}
	return nil
}

// checksum is the first 32 bits of the SHA-1 of the sort field, which Anki
// uses to find duplicate notes.
func checksum(sortField string) int64 {
	sum := sha1.Sum([]byte(sortField))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

const collectionSchema = `
CREATE TABLE col (
    id              integer primary key,
    crt             integer not null,
    mod             integer not null,
    scm             integer not null,
    ver             integer not null,
    dty             integer not null,
    usn             integer not null,
    ls              integer not null,
    conf            text not null,
    models          text not null,
    decks           text not null,
    dconf           text not null,
    tags            text not null
);
CREATE TABLE notes (
    id              integer primary key,
    guid            text not null,
    mid             integer not null,
    mod             integer not null,
    usn             integer not null,
    tags            text not null,
    flds            text not null,
    sfld            integer not null,
    csum            integer not null,
    flags           integer not null,
    data            text not null
);
CREATE TABLE cards (
    id              integer primary key,
    nid             integer not null,
    did             integer not null,
    ord             integer not null,
    mod             integer not null,
    usn             integer not null,
    type            integer not null,
    queue           integer not null,
    due             integer not null,
    ivl             integer not null,
    factor          integer not null,
    reps            integer not null,
    lapses          integer not null,
    left            integer not null,
    odue            integer not null,
    odid            integer not null,
    flags           integer not null,
    data            text not null
);
CREATE TABLE revlog (
    id              integer primary key,
    cid             integer not null,
    usn             integer not null,
    ease            integer not null,
    ivl             integer not null,
    lastIvl         integer not null,
    factor          integer not null,
    time            integer not null,
    type            integer not null
);
CREATE TABLE graves (
    usn             integer not null,
    oid             integer not null,
    type            integer not null
);
CREATE INDEX ix_notes_usn on notes (usn);
CREATE INDEX ix_cards_usn on cards (usn);
CREATE INDEX ix_revlog_usn on revlog (usn);
CREATE INDEX ix_cards_nid on cards (nid);
CREATE INDEX ix_cards_sched on cards (did, queue, due);
CREATE INDEX ix_revlog_cid on revlog (cid);
CREATE INDEX ix_notes_csum on notes (csum);
`
