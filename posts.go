package sitebridge

import (
	"database/sql"
	"time"
)

const postColumns = `id, title, slug, status, author_id, date, excerpt, post_type, content`

func scanPost(row interface{ Scan(...any) error }) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Status, &p.AuthorID, &p.Date, &p.Excerpt, &p.Type, &p.Content)
	return p, err
}

// CreatePost inserts a new content record and returns its id.
func (s *Store) CreatePost(p Post) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO posts (title, slug, status, author_id, date, excerpt, post_type, content) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Slug, p.Status, p.AuthorID, p.Date, p.Excerpt, p.Type, p.Content)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdatePost rewrites an existing record in place. The previous row is
// snapshotted into post_revisions first.
func (s *Store) UpdatePost(p Post) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO post_revisions (post_id, title, slug, status, author_id, date, excerpt, post_type, content, saved_at)
		SELECT id, title, slug, status, author_id, date, excerpt, post_type, content, ? FROM posts WHERE id = ?`,
		time.Now().UTC().Format(dateFormat), p.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE posts SET title = ?, slug = ?, status = ?, author_id = ?, date = ?, excerpt = ?, post_type = ?, content = ? WHERE id = ?`,
		p.Title, p.Slug, p.Status, p.AuthorID, p.Date, p.Excerpt, p.Type, p.Content, p.ID); err != nil {
		return err
	}
	return tx.Commit()
}

// DeletePost permanently removes a post together with its revisions, meta,
// term relationships and attachment records. There is no trash stage.
// It reports whether a post row was actually removed.
func (s *Store) DeletePost(id int64) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	for _, q := range []string{
		`DELETE FROM post_revisions WHERE post_id = ?`,
		`DELETE FROM post_meta WHERE post_id = ?`,
		`DELETE FROM term_relationships WHERE post_id = ?`,
		`DELETE FROM attachments WHERE post_id = ?`,
	} {
		if _, err := tx.Exec(q, id); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetPost returns a post by id regardless of status.
func (s *Store) GetPost(id int64) (Post, error) {
	p, err := scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		return Post{}, err
	}
	p.Tags, err = s.postTermNames(p.ID, "post_tag")
	return p, err
}

// GetPublishedBySlug returns a published post by slug.
func (s *Store) GetPublishedBySlug(slug string) (Post, error) {
	p, err := scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ? AND status = 'publish'`, slug))
	if err != nil {
		return Post{}, err
	}
	p.Tags, err = s.postTermNames(p.ID, "post_tag")
	return p, err
}

// ListPublished returns all published posts ordered by date descending.
func (s *Store) ListPublished() ([]Post, error) {
	rows, err := s.db.Query(`SELECT ` + postColumns + ` FROM posts WHERE status = 'publish' ORDER BY date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].Tags, err = s.postTermNames(posts[i].ID, "post_tag"); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// PostIDsByMeta returns the ids of every post whose meta entry under key
// equals value. Uniqueness is not enforced at write time, so more than one
// id can come back.
func (s *Store) PostIDsByMeta(key, value string) ([]int64, error) {
	rows, err := s.db.Query(`SELECT post_id FROM post_meta WHERE meta_key = ? AND meta_value = ? ORDER BY post_id`, key, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetPostMeta upserts a single meta entry for a post.
func (s *Store) SetPostMeta(postID int64, key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO post_meta (post_id, meta_key, meta_value) VALUES (?, ?, ?)`, postID, key, value)
	return err
}

// PostMeta returns a single meta value, or "" when unset.
func (s *Store) PostMeta(postID int64, key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT meta_value FROM post_meta WHERE post_id = ? AND meta_key = ?`, postID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SaveAttachment records a sideloaded image and returns its id.
func (s *Store) SaveAttachment(a Attachment) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO attachments (post_id, filename, title, caption, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.PostID, a.Filename, a.Title, a.Caption, a.Width, a.Height, a.Size, a.UploadedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// AttachmentFilenames returns every stored attachment filename. Used to keep
// sideloaded filenames unique.
func (s *Store) AttachmentFilenames() ([]string, error) {
	rows, err := s.db.Query(`SELECT filename FROM attachments`)
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

// PostAttachments returns the attachments owned by a post.
func (s *Store) PostAttachments(postID int64) ([]Attachment, error) {
	rows, err := s.db.Query(`SELECT id, post_id, filename, title, caption, width, height, size, uploaded_at FROM attachments WHERE post_id = ? ORDER BY id`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attachment
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.ID, &a.PostID, &a.Filename, &a.Title, &a.Caption, &a.Width, &a.Height, &a.Size, &a.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
