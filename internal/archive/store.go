package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"reckon/internal/config"
	"reckon/internal/dupgate"
	"reckon/internal/identity"
	"reckon/internal/recording"
)

// Store manages archive persistence backed by SQLite. It also implements
// dupgate.RecordLookup so the gate queries the archive without a translation
// layer in between.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the archive database. A file lock next to
// the database keeps concurrent reckon processes from interleaving gate
// evaluation and record insertion.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.ArchiveDatabasePath()
	lock := flock.New(dbPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire archive lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another reckon process holds the archive lock")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection and releases the archive lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Insert persists a new record and returns it with the assigned id and
// timestamps filled in.
func (s *Store) Insert(ctx context.Context, record *Record) (*Record, error) {
	if record == nil {
		return nil, errors.New("record is nil")
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	var fileTypesJSON string
	if len(record.FileTypes) > 0 {
		encoded, err := json.Marshal(record.FileTypes)
		if err != nil {
			return nil, fmt.Errorf("marshal file types: %w", err)
		}
		fileTypesJSON = string(encoded)
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO archive_records (
            identity_compact, identity_hex, identity_hex_dashed, fingerprint,
            meeting_id, topic, start_time, duration_seconds, aggregate_file_size,
            category, rule, no_show, incomplete, decision, match_method, run_id,
            file_types_json, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableString(record.Identity.Compact),
		nullableString(record.Identity.LegacyHex),
		nullableString(record.Identity.LegacyHexDashed),
		nullableString(record.Fingerprint),
		nullableString(record.MeetingID),
		nullableString(record.Topic),
		nullableTime(record.StartTime),
		record.DurationSeconds,
		record.AggregateFileSize,
		record.Category,
		record.Rule,
		boolToInt(record.NoShow),
		boolToInt(record.Incomplete),
		record.Decision,
		record.MatchMethod,
		nullableString(record.RunID),
		nullableString(fileTypesJSON),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches an archive record by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM archive_records WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// FindByIdentity returns the earliest record whose stored identity matches the
// given form under any encoding. Rows persist all three forms, so a single
// column comparison per form suffices regardless of which encoding the
// original source emitted.
func (s *Store) FindByIdentity(ctx context.Context, form string) (*dupgate.Prior, error) {
	if form == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+recordColumns+` FROM archive_records
         WHERE identity_compact = ? OR identity_hex = ? OR identity_hex_dashed = ?
         ORDER BY id LIMIT 1`,
		form, form, form,
	)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by identity: %w", err)
	}
	return record.prior(), nil
}

// FindByFingerprint returns the earliest record matching a meeting fingerprint.
func (s *Store) FindByFingerprint(ctx context.Context, fingerprint string) (*dupgate.Prior, error) {
	if fingerprint == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+recordColumns+` FROM archive_records WHERE fingerprint = ? ORDER BY id LIMIT 1`,
		fingerprint,
	)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by fingerprint: %w", err)
	}
	return record.prior(), nil
}

// List returns archive records filtered by category set (or all records when
// no category is provided), oldest first.
func (s *Store) List(ctx context.Context, categories ...recording.Category) ([]*Record, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + recordColumns + ` FROM archive_records`
	orderClause := ` ORDER BY created_at`

	if len(categories) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(categories))
		args := make([]any, len(categories))
		for i, category := range categories {
			args[i] = category
		}
		query := baseQuery + ` WHERE category IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Stats returns a count of records grouped by category.
func (s *Store) Stats(ctx context.Context) (map[recording.Category]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, COUNT(1) FROM archive_records GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("archive stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[recording.Category]int)
	for rows.Next() {
		var category recording.Category
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		stats[category] = count
	}
	return stats, rows.Err()
}

const recordColumns = "id, identity_compact, identity_hex, identity_hex_dashed, fingerprint, meeting_id, topic, start_time, duration_seconds, aggregate_file_size, category, rule, no_show, incomplete, decision, match_method, run_id, file_types_json, created_at, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id              int64
		compact         sql.NullString
		legacyHex       sql.NullString
		legacyHexDashed sql.NullString
		fingerprint     sql.NullString
		meetingID       sql.NullString
		topic           sql.NullString
		startRaw        sql.NullString
		durationSeconds int64
		aggregateSize   int64
		categoryStr     string
		rule            int
		noShow          int
		incomplete      int
		decisionStr     string
		methodStr       string
		runID           sql.NullString
		fileTypesJSON   sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&compact,
		&legacyHex,
		&legacyHexDashed,
		&fingerprint,
		&meetingID,
		&topic,
		&startRaw,
		&durationSeconds,
		&aggregateSize,
		&categoryStr,
		&rule,
		&noShow,
		&incomplete,
		&decisionStr,
		&methodStr,
		&runID,
		&fileTypesJSON,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	record := &Record{
		ID: id,
		Identity: identity.CanonicalIdentity{
			Compact:         compact.String,
			LegacyHex:       legacyHex.String,
			LegacyHexDashed: legacyHexDashed.String,
		},
		Fingerprint:       fingerprint.String,
		MeetingID:         meetingID.String,
		Topic:             topic.String,
		DurationSeconds:   durationSeconds,
		AggregateFileSize: aggregateSize,
		Category:          recording.Category(categoryStr),
		Rule:              rule,
		NoShow:            noShow != 0,
		Incomplete:        incomplete != 0,
		Decision:          dupgate.Decision(decisionStr),
		MatchMethod:       dupgate.Method(methodStr),
		RunID:             runID.String,
	}

	if fileTypesJSON.Valid && fileTypesJSON.String != "" {
		if err := json.Unmarshal([]byte(fileTypesJSON.String), &record.FileTypes); err != nil {
			return nil, fmt.Errorf("unmarshal file types: %w", err)
		}
	}

	if start, err := parseTimeString(startRaw.String); err == nil {
		record.StartTime = start
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
