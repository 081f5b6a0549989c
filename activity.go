package sitebridge

import "time"

// ActivityEntry is one dispatched sync command, shown on the admin page.
type ActivityEntry struct {
	ID        int64
	Command   string
	Detail    string
	RemoteIP  string
	CreatedAt string
}

// RecordActivity appends a sync activity entry.
func (s *Store) RecordActivity(command, detail, remoteIP string) error {
	_, err := s.db.Exec(`INSERT INTO sync_activity (command, detail, remote_ip, created_at) VALUES (?, ?, ?, ?)`,
		command, detail, remoteIP, time.Now().UTC().Format(dateFormat))
	return err
}

// RecentActivity returns the latest entries, newest first.
func (s *Store) RecentActivity(limit int) ([]ActivityEntry, error) {
	rows, err := s.db.Query(`SELECT id, command, detail, remote_ip, created_at FROM sync_activity ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		if err := rows.Scan(&e.ID, &e.Command, &e.Detail, &e.RemoteIP, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
