// Package library stores quiz definitions in SQLite so moderators can
// upload quizzes without access to the quiz directory. Stored quizzes are
// loaded with sources of the form "library:<slug>".
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/playperu/trivia/internal/quiz"
)

// Scheme is the source prefix routed to the library.
const Scheme = "library"

var (
	ErrNotFound    = errors.New("quiz not found")
	ErrInvalidSlug = errors.New("slug must be 1-64 lowercase letters, digits or dashes")
)

var slugRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`)

type Summary struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Questions int    `json:"questions"`
	UpdatedAt string `json:"updatedAt"`
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Put validates def and stores it under slug, replacing any previous quiz.
func (s *Store) Put(ctx context.Context, slug string, def *quiz.Definition) error {
	if !slugRe.MatchString(slug) {
		return ErrInvalidSlug
	}
	if err := def.Validate(); err != nil {
		return fmt.Errorf("validating quiz: %w", err)
	}
	data, err := json.Marshal(def)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quizzes (slug, title, data) VALUES (?, ?, jsonb(?))
		ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			data = excluded.data,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`, slug, def.Title, string(data))
	if err != nil {
		return fmt.Errorf("storing quiz %q: %w", slug, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, slug string) (*quiz.Definition, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM quizzes WHERE slug = ?`, slug,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return quiz.Parse([]byte(data), quiz.FormatJSON)
}

func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slug, title, json(data), updated_at FROM quizzes ORDER BY slug`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Summary{}
	for rows.Next() {
		var sum Summary
		var data string
		if err := rows.Scan(&sum.Slug, &sum.Title, &data, &sum.UpdatedAt); err != nil {
			return nil, err
		}
		var def quiz.Definition
		if err := json.Unmarshal([]byte(data), &def); err != nil {
			return nil, fmt.Errorf("decoding quiz %q: %w", sum.Slug, err)
		}
		sum.Questions = len(def.Questions)
		list = append(list, sum)
	}
	return list, rows.Err()
}

func (s *Store) Delete(ctx context.Context, slug string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE slug = ?`, slug)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Load implements quiz.Loader. The source is the bare slug.
func (s *Store) Load(ctx context.Context, slug string) (*quiz.Definition, error) {
	def, err := s.Get(ctx, slug)
	if err != nil {
		return nil, quiz.LoadError(Scheme+":"+slug, err)
	}
	return def, nil
}
