package sitebridge

import (
	"database/sql"
	"strings"
)

// TermFilter narrows ListTerms results.
type TermFilter struct {
	Search    string // substring match on the term name, case-insensitive
	HideEmpty bool   // drop terms with no associated posts
}

// RegisterTaxonomy adds a taxonomy if it is not already registered.
func (s *Store) RegisterTaxonomy(name, label string, hierarchical bool) error {
	h := 0
	if hierarchical {
		h = 1
	}
	_, err := s.db.Exec(`INSERT OR IGNORE INTO taxonomies (name, label, hierarchical) VALUES (?, ?, ?)`, name, label, h)
	return err
}

// Taxonomies returns every registered taxonomy ordered by name.
func (s *Store) Taxonomies() ([]Taxonomy, error) {
	rows, err := s.db.Query(`SELECT name, label, hierarchical FROM taxonomies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Taxonomy
	for rows.Next() {
		var t Taxonomy
		var h int
		if err := rows.Scan(&t.Name, &t.Label, &h); err != nil {
			return nil, err
		}
		t.Hierarchical = h == 1
		out = append(out, t)
	}
	return out, rows.Err()
}

// EnsureTerm resolves a term by name within a taxonomy, creating it when
// missing, and returns its id.
func (s *Store) EnsureTerm(taxonomy, name string) (int64, error) {
	name = strings.TrimSpace(name)
	slug := Slugify(name)
	var id int64
	err := s.db.QueryRow(`SELECT id FROM terms WHERE taxonomy = ? AND slug = ?`, taxonomy, slug).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	res, err := s.db.Exec(`INSERT INTO terms (taxonomy, name, slug) VALUES (?, ?, ?)`, taxonomy, name, slug)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// EnsureTerms resolves a list of term names, creating missing ones.
func (s *Store) EnsureTerms(taxonomy string, names []string) ([]int64, error) {
	names = FilterEmpty(names)
	ids := make([]int64, 0, len(names))
	for _, n := range names {
		id, err := s.EnsureTerm(taxonomy, n)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// TermExists reports whether a term id is registered in the given taxonomy.
func (s *Store) TermExists(taxonomy string, id int64) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM terms WHERE taxonomy = ? AND id = ?`, taxonomy, id).Scan(&n)
	return n > 0, err
}

// SetPostTerms replaces a post's term assignments within one taxonomy.
func (s *Store) SetPostTerms(postID int64, taxonomy string, termIDs []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM term_relationships WHERE post_id = ? AND term_id IN (SELECT id FROM terms WHERE taxonomy = ?)`, postID, taxonomy); err != nil {
		return err
	}
	for _, id := range termIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO term_relationships (post_id, term_id) VALUES (?, ?)`, postID, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// postTermNames returns the names of a post's terms in one taxonomy.
func (s *Store) postTermNames(postID int64, taxonomy string) ([]string, error) {
	rows, err := s.db.Query(`SELECT t.name FROM terms t
		JOIN term_relationships r ON r.term_id = t.id
		WHERE r.post_id = ? AND t.taxonomy = ? ORDER BY t.name`, postID, taxonomy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// ListTerms returns the terms of a taxonomy with their usage counts,
// optionally filtered by a name substring and by emptiness.
func (s *Store) ListTerms(taxonomy string, f TermFilter) ([]Term, error) {
	query := `SELECT t.id, t.name, t.slug, t.description, COUNT(r.post_id)
		FROM terms t
		LEFT JOIN term_relationships r ON r.term_id = t.id
		WHERE t.taxonomy = ?`
	args := []any{taxonomy}
	if search := strings.TrimSpace(f.Search); search != "" {
		query += ` AND instr(lower(t.name), lower(?)) > 0`
		args = append(args, search)
	}
	query += ` GROUP BY t.id`
	if f.HideEmpty {
		query += ` HAVING COUNT(r.post_id) > 0`
	}
	query += ` ORDER BY t.name`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []Term
	for rows.Next() {
		var t Term
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Description, &t.Count); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}
