package textback

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrEmptyMessage is returned when storing a message with neither text nor media
var ErrEmptyMessage = errors.New("message has no text and no media")

// DB is the SQLite message store
type DB struct {
	db *sql.DB
}

var _ Store = (*DB)(nil)

// OpenDB opens a new database connection
func OpenDB(dbPath string) (*DB, error) {
	if strings.TrimSpace(dbPath) == "" {
		dbPath = "textback.db"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &DB{db: db}, nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS participants (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			participant_id INTEGER NOT NULL,
			platform TEXT NOT NULL,
			text TEXT NOT NULL DEFAULT '',
			words INTEGER NOT NULL DEFAULT 0,
			timestamp_ms INTEGER NOT NULL,
			FOREIGN KEY (participant_id) REFERENCES participants(id)
		)`,
		`CREATE TABLE IF NOT EXISTS medias (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			message_id INTEGER NOT NULL,
			uri TEXT NOT NULL,
			FOREIGN KEY (message_id) REFERENCES messages(id)
		)`,
		`CREATE TABLE IF NOT EXISTS reactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			message_id INTEGER NOT NULL,
			participant_id INTEGER NOT NULL,
			reaction TEXT NOT NULL,
			FOREIGN KEY (message_id) REFERENCES messages(id),
			FOREIGN KEY (participant_id) REFERENCES participants(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages(timestamp_ms, id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_platform ON messages(platform, id)`,
		`CREATE INDEX IF NOT EXISTS idx_medias_message ON medias(message_id, id)`,
		`CREATE INDEX IF NOT EXISTS idx_reactions_message ON reactions(message_id, id)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// CreateParticipant inserts a participant if it does not exist and returns its id
func (db *DB) CreateParticipant(ctx context.Context, name string) (int64, error) {
	return createParticipant(ctx, db.db, name)
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func createParticipant(ctx context.Context, q execQuerier, name string) (int64, error) {
	if _, err := q.ExecContext(ctx, "INSERT OR IGNORE INTO participants (name) VALUES (?)", name); err != nil {
		return 0, fmt.Errorf("failed to create participant: %w", err)
	}
	var id int64
	if err := q.QueryRowContext(ctx, "SELECT id FROM participants WHERE name = ?", name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to get participant: %w", err)
	}
	return id, nil
}

// CreateMessage stores a message with its medias and reactions and returns its id. A zero
// message id lets the database assign the next id; a zero word count is computed from the text.
func (db *DB) CreateMessage(ctx context.Context, m Message) (int64, error) {
	if m.Text == "" && len(m.Medias) == 0 {
		return 0, ErrEmptyMessage
	}
	if m.Words == 0 {
		m.Words = CountWords(m.Text)
	}

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	participantID, err := createParticipant(ctx, tx, m.Participant)
	if err != nil {
		return 0, err
	}

	var id any
	if m.ID != 0 {
		id = m.ID
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO messages (id, participant_id, platform, text, words, timestamp_ms) VALUES (?, ?, ?, ?, ?, ?)",
		id, participantID, string(m.Platform), m.Text, m.Words, m.Timestamp.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create message: %w", err)
	}
	messageID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get message id: %w", err)
	}

	for _, uri := range m.Medias {
		if _, err := tx.ExecContext(ctx, "INSERT INTO medias (message_id, uri) VALUES (?, ?)", messageID, uri); err != nil {
			return 0, fmt.Errorf("failed to create media: %w", err)
		}
	}

	for _, reaction := range m.Reactions {
		reactorID, err := createParticipant(ctx, tx, reaction.Participant)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO reactions (message_id, participant_id, reaction) VALUES (?, ?, ?)",
			messageID, reactorID, reaction.Reaction,
		); err != nil {
			return 0, fmt.Errorf("failed to create reaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit message: %w", err)
	}
	return messageID, nil
}

// CountWords returns the number of whitespace separated words in text
func CountWords(text string) int {
	return len(strings.Fields(text))
}

const messageColumns = `m.id, m.timestamp_ms, p.name, m.platform, m.text, m.words`

// FindAnchor returns the first message from idBound in the given direction matching filter
func (db *DB) FindAnchor(ctx context.Context, dir Direction, idBound int64, filter MessageFilter) (Message, bool, error) {
	var sb strings.Builder
	args := []any{idBound}

	sb.WriteString("SELECT " + messageColumns + " FROM messages m JOIN participants p ON p.id = m.participant_id WHERE ")
	if dir == Ascending {
		sb.WriteString("m.id >= ?")
	} else {
		sb.WriteString("m.id <= ?")
	}
	if filter.Platform != "" {
		sb.WriteString(" AND m.platform = ?")
		args = append(args, string(filter.Platform))
	}
	if filter.MinWords > 0 {
		sb.WriteString(" AND m.words >= ?")
		args = append(args, filter.MinWords)
	}
	if filter.HasReaction {
		sb.WriteString(" AND EXISTS (SELECT 1 FROM reactions r WHERE r.message_id = m.id)")
	}
	if dir == Ascending {
		sb.WriteString(" ORDER BY m.id ASC LIMIT 1")
	} else {
		sb.WriteString(" ORDER BY m.id DESC LIMIT 1")
	}

	messages, err := db.queryMessages(ctx, sb.String(), args...)
	if err != nil {
		return Message{}, false, fmt.Errorf("failed to find anchor: %w", err)
	}
	if len(messages) == 0 {
		return Message{}, false, nil
	}
	return messages[0], true, nil
}

// FindWindow returns up to limit messages ordered by (timestamp, id) from the anchor
func (db *DB) FindWindow(ctx context.Context, dir Direction, anchor Message, limit int) ([]Message, error) {
	ts := anchor.Timestamp.UnixMilli()
	query := "SELECT " + messageColumns + " FROM messages m JOIN participants p ON p.id = m.participant_id " +
		"WHERE (m.timestamp_ms = ? AND m.id >= ?) OR m.timestamp_ms > ? ORDER BY m.timestamp_ms ASC, m.id ASC LIMIT ?"
	if dir == Descending {
		query = "SELECT " + messageColumns + " FROM messages m JOIN participants p ON p.id = m.participant_id " +
			"WHERE (m.timestamp_ms = ? AND m.id <= ?) OR m.timestamp_ms < ? ORDER BY m.timestamp_ms DESC, m.id DESC LIMIT ?"
	}

	messages, err := db.queryMessages(ctx, query, ts, anchor.ID, ts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find window: %w", err)
	}
	return messages, nil
}

// queryMessages runs a message query and attaches medias and reactions in id order
func (db *DB) queryMessages(ctx context.Context, query string, args ...any) ([]Message, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	index := make(map[int64]int)
	for rows.Next() {
		var m Message
		var ts int64
		var platform string
		if err := rows.Scan(&m.ID, &ts, &m.Participant, &platform, &m.Text, &m.Words); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Timestamp = time.UnixMilli(ts).UTC()
		m.Platform = Platform(platform)
		index[m.ID] = len(messages)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	if len(messages) == 0 {
		return messages, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(messages)), ",")
	ids := make([]any, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}

	mediaRows, err := db.db.QueryContext(ctx,
		"SELECT message_id, uri FROM medias WHERE message_id IN ("+placeholders+") ORDER BY id", ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to get medias: %w", err)
	}
	defer mediaRows.Close()
	for mediaRows.Next() {
		var messageID int64
		var uri string
		if err := mediaRows.Scan(&messageID, &uri); err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		i := index[messageID]
		messages[i].Medias = append(messages[i].Medias, uri)
	}
	if err := mediaRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating medias: %w", err)
	}

	reactionRows, err := db.db.QueryContext(ctx,
		"SELECT r.message_id, r.reaction, p.name FROM reactions r JOIN participants p ON p.id = r.participant_id "+
			"WHERE r.message_id IN ("+placeholders+") ORDER BY r.id", ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to get reactions: %w", err)
	}
	defer reactionRows.Close()
	for reactionRows.Next() {
		var messageID int64
		var reaction Reaction
		if err := reactionRows.Scan(&messageID, &reaction.Reaction, &reaction.Participant); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		i := index[messageID]
		messages[i].Reactions = append(messages[i].Reactions, reaction)
	}
	if err := reactionRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reactions: %w", err)
	}

	return messages, nil
}

// AggregateMessageRange returns the id and timestamp range of all messages
func (db *DB) AggregateMessageRange(ctx context.Context) (MessageRange, error) {
	var count int64
	var minID, maxID, minTs, maxTs sql.NullInt64
	err := db.db.QueryRowContext(ctx,
		"SELECT COUNT(*), MIN(id), MAX(id), MIN(timestamp_ms), MAX(timestamp_ms) FROM messages",
	).Scan(&count, &minID, &maxID, &minTs, &maxTs)
	if err != nil {
		return MessageRange{}, fmt.Errorf("failed to aggregate messages: %w", err)
	}
	if count == 0 {
		return MessageRange{}, nil
	}
	return MessageRange{
		Count:        count,
		MinID:        minID.Int64,
		MaxID:        maxID.Int64,
		MinTimestamp: time.UnixMilli(minTs.Int64).UTC(),
		MaxTimestamp: time.UnixMilli(maxTs.Int64).UTC(),
	}, nil
}

// DistinctPlatforms returns every platform that has at least one message
func (db *DB) DistinctPlatforms(ctx context.Context) ([]Platform, error) {
	values, err := db.distinctStrings(ctx, "SELECT DISTINCT platform FROM messages ORDER BY platform")
	if err != nil {
		return nil, fmt.Errorf("failed to get platforms: %w", err)
	}
	platforms := make([]Platform, len(values))
	for i, v := range values {
		platforms[i] = Platform(v)
	}
	return platforms, nil
}

// DistinctParticipantNames returns every participant name
func (db *DB) DistinctParticipantNames(ctx context.Context) ([]string, error) {
	names, err := db.distinctStrings(ctx, "SELECT DISTINCT name FROM participants ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	return names, nil
}

// DistinctReactions returns every reaction symbol
func (db *DB) DistinctReactions(ctx context.Context) ([]string, error) {
	reactions, err := db.distinctStrings(ctx, "SELECT DISTINCT reaction FROM reactions ORDER BY reaction")
	if err != nil {
		return nil, fmt.Errorf("failed to get reactions: %w", err)
	}
	return reactions, nil
}

func (db *DB) distinctStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
