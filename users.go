package sitebridge

import (
	"database/sql"
	"strings"
)

// SaveAuthor upserts an author by login and returns its id.
func (s *Store) SaveAuthor(login, displayName string) (int64, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM users WHERE login = ?`, login).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		res, err := s.db.Exec(`INSERT INTO users (login, display_name) VALUES (?, ?)`, login, displayName)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	case err != nil:
		return 0, err
	}
	if _, err := s.db.Exec(`UPDATE users SET display_name = ? WHERE id = ?`, displayName, id); err != nil {
		return 0, err
	}
	return id, nil
}

// SearchAuthors returns authors ordered by display name. A non-empty search
// filters to display names containing the substring, case-insensitively.
func (s *Store) SearchAuthors(search string) ([]Author, error) {
	query := `SELECT id, display_name FROM users`
	var args []any
	if search = strings.TrimSpace(search); search != "" {
		query += ` WHERE instr(lower(display_name), lower(?)) > 0`
		args = append(args, search)
	}
	query += ` ORDER BY display_name`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []Author
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// AuthorName returns the display name for an author id, or "" when unknown.
func (s *Store) AuthorName(id int64) (string, error) {
	var name string
	err := s.db.QueryRow(`SELECT display_name FROM users WHERE id = ?`, id).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return name, nil
}
