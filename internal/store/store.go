package store

import (
	"database/sql"

	_ "github.com/glebarez/go-sqlite"
	"github.com/tmc/langchaingo/llms"
)

// Store is the sqlite-backed persistence layer: conversation history,
// scheduled reminders, and the audit trail.
type Store struct {
	DB *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id TEXT,
			role TEXT,
			content TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS reminders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id TEXT,
			description TEXT,
			interval_seconds INTEGER,
			last_run DATETIME,
			status TEXT DEFAULT 'active'
		);`,
		`CREATE TABLE IF NOT EXISTS audit (
			id TEXT PRIMARY KEY,
			chat_id TEXT,
			capability TEXT,
			params TEXT,
			outcome TEXT,
			result TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return nil, err
		}
	}

	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) AddMessage(chatID string, role string, content string) error {
	query := `INSERT INTO messages (chat_id, role, content) VALUES (?, ?, ?)`
	_, err := s.DB.Exec(query, chatID, role, content)
	return err
}

// GetHistory returns the last limit messages for a chat in chronological
// order, converted to the reasoning service's message format.
func (s *Store) GetHistory(chatID string, limit int) ([]llms.MessageContent, error) {
	query := `SELECT role, content FROM messages WHERE chat_id = ? ORDER BY timestamp DESC LIMIT ?`
	rows, err := s.DB.Query(query, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []llms.MessageContent
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, err
		}

		var msgRole llms.ChatMessageType
		switch role {
		case "human":
			msgRole = llms.ChatMessageTypeHuman
		case "ai":
			msgRole = llms.ChatMessageTypeAI
		case "system":
			msgRole = llms.ChatMessageTypeSystem
		default:
			msgRole = llms.ChatMessageTypeHuman
		}

		history = append(history, llms.MessageContent{
			Role: msgRole,
			Parts: []llms.ContentPart{
				llms.TextPart(content),
			},
		})
	}

	// Reverse to get chronological order
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}

	return history, nil
}

func (s *Store) AddReminder(chatID string, description string, intervalSeconds int) error {
	query := `INSERT INTO reminders (chat_id, description, interval_seconds, last_run) VALUES (?, ?, ?, datetime('now', '-365 days'))`
	_, err := s.DB.Exec(query, chatID, description, intervalSeconds)
	return err
}

// GetDueReminders returns active reminders whose interval has elapsed since
// their last run.
func (s *Store) GetDueReminders() ([]Reminder, error) {
	query := `
		SELECT id, chat_id, description, interval_seconds
		FROM reminders
		WHERE status = 'active'
		AND (last_run IS NULL OR (julianday('now') - julianday(last_run)) * 86400 >= interval_seconds)`
	rows, err := s.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []Reminder
	for rows.Next() {
		var r Reminder
		if err := rows.Scan(&r.ID, &r.ChatID, &r.Description, &r.IntervalSec); err != nil {
			return nil, err
		}
		due = append(due, r)
	}
	return due, nil
}

func (s *Store) UpdateReminderLastRun(id int64) error {
	query := `UPDATE reminders SET last_run = datetime('now') WHERE id = ?`
	_, err := s.DB.Exec(query, id)
	return err
}

func (s *Store) DeleteReminder(id int64) error {
	query := `DELETE FROM reminders WHERE id = ?`
	_, err := s.DB.Exec(query, id)
	return err
}

func (s *Store) ClearReminders(chatID string) error {
	query := `DELETE FROM reminders WHERE chat_id = ?`
	_, err := s.DB.Exec(query, chatID)
	return err
}

func (s *Store) AppendAudit(rec AuditRecord) error {
	query := `INSERT INTO audit (id, chat_id, capability, params, outcome, result, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.DB.Exec(query, rec.ID, rec.ChatID, rec.Capability, rec.Params, rec.Outcome, rec.Result, rec.Timestamp)
	return err
}

// RecentAudit returns the newest limit audit records, newest first.
func (s *Store) RecentAudit(limit int) ([]AuditRecord, error) {
	query := `SELECT id, chat_id, capability, params, outcome, result, created_at FROM audit ORDER BY created_at DESC LIMIT ?`
	rows, err := s.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AuditRecord
	for rows.Next() {
		var rec AuditRecord
		if err := rows.Scan(&rec.ID, &rec.ChatID, &rec.Capability, &rec.Params, &rec.Outcome, &rec.Result, &rec.Timestamp); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
