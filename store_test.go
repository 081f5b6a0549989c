package sitebridge

import (
	"path/filepath"
	"strconv"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test_sitebridge.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s == nil {
		t.Fatal("store should not be nil")
	}
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestOptionRoundTrip(t *testing.T) {
	s := setupTestStore(t)

	v, err := s.Option("missing")
	if err != nil {
		t.Fatalf("Option failed: %v", err)
	}
	if v != "" {
		t.Errorf("missing option = %q, want empty", v)
	}

	changed, err := s.SetOption("docswrite_connection", "abc123")
	if err != nil {
		t.Fatalf("SetOption failed: %v", err)
	}
	if !changed {
		t.Error("first write should report a change")
	}

	// Writing the same value again reports no change; this is what the
	// connect command's "Already connected" branch relies on.
	changed, err = s.SetOption("docswrite_connection", "abc123")
	if err != nil {
		t.Fatalf("SetOption failed: %v", err)
	}
	if changed {
		t.Error("identical write should not report a change")
	}

	changed, err = s.SetOption("docswrite_connection", "0")
	if err != nil {
		t.Fatalf("SetOption failed: %v", err)
	}
	if !changed {
		t.Error("different value should report a change")
	}

	v, err = s.Option("docswrite_connection")
	if err != nil {
		t.Fatalf("Option failed: %v", err)
	}
	if v != "0" {
		t.Errorf("option = %q, want %q", v, "0")
	}
}

func TestCreateAndGetPost(t *testing.T) {
	s := setupTestStore(t)

	id, err := s.CreatePost(Post{
		Title:    "Test Post",
		Slug:     "test-post",
		Status:   "publish",
		AuthorID: 3,
		Date:     "2024-01-15 10:30:00",
		Excerpt:  "A test post",
		Type:     "post",
		Content:  "<p>Body</p>",
	})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if id == 0 {
		t.Fatal("CreatePost should return a non-zero id")
	}

	got, err := s.GetPost(id)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != "Test Post" {
		t.Errorf("Title = %q, want %q", got.Title, "Test Post")
	}
	if got.Slug != "test-post" {
		t.Errorf("Slug = %q, want %q", got.Slug, "test-post")
	}
	if got.AuthorID != 3 {
		t.Errorf("AuthorID = %d, want 3", got.AuthorID)
	}
	if got.Content != "<p>Body</p>" {
		t.Errorf("Content = %q", got.Content)
	}
}

func TestUpdatePostSnapshotsRevision(t *testing.T) {
	s := setupTestStore(t)

	id, err := s.CreatePost(Post{Title: "Original", Slug: "original", Status: "publish", Date: "2024-01-01 00:00:00"})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	if err := s.UpdatePost(Post{ID: id, Title: "Updated", Slug: "updated", Status: "publish", Date: "2024-02-01 00:00:00"}); err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}

	got, err := s.GetPost(id)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != "Updated" {
		t.Errorf("Title = %q, want %q", got.Title, "Updated")
	}

	var revisions int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM post_revisions WHERE post_id = ?`, id).Scan(&revisions); err != nil {
		t.Fatalf("count revisions: %v", err)
	}
	if revisions != 1 {
		t.Errorf("revisions = %d, want 1", revisions)
	}

	var title string
	if err := s.db.QueryRow(`SELECT title FROM post_revisions WHERE post_id = ?`, id).Scan(&title); err != nil {
		t.Fatalf("read revision: %v", err)
	}
	if title != "Original" {
		t.Errorf("revision title = %q, want %q", title, "Original")
	}
}

func TestDeletePostRemovesEverything(t *testing.T) {
	s := setupTestStore(t)

	id, err := s.CreatePost(Post{Title: "Doomed", Slug: "doomed", Status: "publish", Date: "2024-01-01 00:00:00"})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if err := s.SetPostMeta(id, "docswrite_post_id", strconv.FormatInt(id, 10)); err != nil {
		t.Fatalf("SetPostMeta failed: %v", err)
	}
	if err := s.UpdatePost(Post{ID: id, Title: "Doomed v2", Slug: "doomed", Status: "publish", Date: "2024-01-02 00:00:00"}); err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	termIDs, err := s.EnsureTerms("post_tag", []string{"ephemeral"})
	if err != nil {
		t.Fatalf("EnsureTerms failed: %v", err)
	}
	if err := s.SetPostTerms(id, "post_tag", termIDs); err != nil {
		t.Fatalf("SetPostTerms failed: %v", err)
	}

	deleted, err := s.DeletePost(id)
	if err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if !deleted {
		t.Fatal("DeletePost should report the row removed")
	}

	ids, err := s.PostIDsByMeta("docswrite_post_id", strconv.FormatInt(id, 10))
	if err != nil {
		t.Fatalf("PostIDsByMeta failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("meta lookup after delete = %v, want empty", ids)
	}

	for _, table := range []string{"post_meta", "post_revisions", "term_relationships"} {
		var n int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE post_id = ?`, id).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s rows after delete = %d, want 0", table, n)
		}
	}

	deleted, err = s.DeletePost(id)
	if err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if deleted {
		t.Error("deleting a missing post should report false")
	}
}

func TestPostIDsByMetaReturnsAllMatches(t *testing.T) {
	s := setupTestStore(t)

	var ids []int64
	for i := 0; i < 2; i++ {
		id, err := s.CreatePost(Post{Title: "Dup", Slug: "dup", Status: "publish", Date: "2024-01-01 00:00:00"})
		if err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
		if err := s.SetPostMeta(id, "docswrite_post_id", "77"); err != nil {
			t.Fatalf("SetPostMeta failed: %v", err)
		}
		ids = append(ids, id)
	}

	got, err := s.PostIDsByMeta("docswrite_post_id", "77")
	if err != nil {
		t.Fatalf("PostIDsByMeta failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("matches = %d, want 2", len(got))
	}
	if got[0] != ids[0] || got[1] != ids[1] {
		t.Errorf("matches = %v, want %v", got, ids)
	}
}

func TestEnsureTermDeduplicates(t *testing.T) {
	s := setupTestStore(t)

	first, err := s.EnsureTerm("category", "Tech News")
	if err != nil {
		t.Fatalf("EnsureTerm failed: %v", err)
	}
	second, err := s.EnsureTerm("category", "tech news")
	if err != nil {
		t.Fatalf("EnsureTerm failed: %v", err)
	}
	if first != second {
		t.Errorf("same slug should resolve to one term: %d vs %d", first, second)
	}

	// Same name in a different taxonomy is a different term.
	other, err := s.EnsureTerm("post_tag", "Tech News")
	if err != nil {
		t.Fatalf("EnsureTerm failed: %v", err)
	}
	if other == first {
		t.Error("terms should be scoped per taxonomy")
	}
}

func TestListTermsSearchAndHideEmpty(t *testing.T) {
	s := setupTestStore(t)

	goID, err := s.EnsureTerm("post_tag", "Golang")
	if err != nil {
		t.Fatalf("EnsureTerm failed: %v", err)
	}
	if _, err := s.EnsureTerm("post_tag", "Rust"); err != nil {
		t.Fatalf("EnsureTerm failed: %v", err)
	}

	postID, err := s.CreatePost(Post{Title: "P", Slug: "p", Status: "publish", Date: "2024-01-01 00:00:00"})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if err := s.SetPostTerms(postID, "post_tag", []int64{goID}); err != nil {
		t.Fatalf("SetPostTerms failed: %v", err)
	}

	all, err := s.ListTerms("post_tag", TermFilter{})
	if err != nil {
		t.Fatalf("ListTerms failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("terms = %d, want 2", len(all))
	}
	if all[0].Name != "Golang" || all[0].Count != 1 {
		t.Errorf("first term = %+v, want Golang with count 1", all[0])
	}
	if all[1].Name != "Rust" || all[1].Count != 0 {
		t.Errorf("second term = %+v, want Rust with count 0", all[1])
	}

	found, err := s.ListTerms("post_tag", TermFilter{Search: "GOL"})
	if err != nil {
		t.Fatalf("ListTerms failed: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Golang" {
		t.Errorf("search result = %+v, want only Golang", found)
	}

	nonEmpty, err := s.ListTerms("post_tag", TermFilter{HideEmpty: true})
	if err != nil {
		t.Fatalf("ListTerms failed: %v", err)
	}
	if len(nonEmpty) != 1 || nonEmpty[0].Name != "Golang" {
		t.Errorf("hide_empty result = %+v, want only Golang", nonEmpty)
	}
}

func TestSearchAuthors(t *testing.T) {
	s := setupTestStore(t)

	for _, a := range []struct{ login, name string }{
		{"zoe", "Zoe Winters"},
		{"alice", "Alice Field"},
		{"malik", "Malik Reed"},
	} {
		if _, err := s.SaveAuthor(a.login, a.name); err != nil {
			t.Fatalf("SaveAuthor failed: %v", err)
		}
	}

	all, err := s.SearchAuthors("")
	if err != nil {
		t.Fatalf("SearchAuthors failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("authors = %d, want 3", len(all))
	}
	if all[0].Name != "Alice Field" {
		t.Errorf("authors should be ordered by display name, got %q first", all[0].Name)
	}

	got, err := s.SearchAuthors("ALI")
	if err != nil {
		t.Fatalf("SearchAuthors failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("search ALI = %d results, want 2 (Alice, Malik)", len(got))
	}

	none, err := s.SearchAuthors("nobody")
	if err != nil {
		t.Fatalf("SearchAuthors failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("search nobody = %v, want empty", none)
	}
}

func TestSaveAuthorUpsertsByLogin(t *testing.T) {
	s := setupTestStore(t)

	first, err := s.SaveAuthor("alice", "Alice")
	if err != nil {
		t.Fatalf("SaveAuthor failed: %v", err)
	}
	second, err := s.SaveAuthor("alice", "Alice Field")
	if err != nil {
		t.Fatalf("SaveAuthor failed: %v", err)
	}
	if first != second {
		t.Errorf("same login should keep one id: %d vs %d", first, second)
	}
	name, err := s.AuthorName(first)
	if err != nil {
		t.Fatalf("AuthorName failed: %v", err)
	}
	if name != "Alice Field" {
		t.Errorf("display name = %q, want %q", name, "Alice Field")
	}
}

func TestActivityLog(t *testing.T) {
	s := setupTestStore(t)

	if err := s.RecordActivity("publish_posts", "published 2 of 2", "203.0.113.9"); err != nil {
		t.Fatalf("RecordActivity failed: %v", err)
	}
	if err := s.RecordActivity("disconnect", "", "203.0.113.9"); err != nil {
		t.Fatalf("RecordActivity failed: %v", err)
	}

	entries, err := s.RecentActivity(10)
	if err != nil {
		t.Fatalf("RecentActivity failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Command != "disconnect" {
		t.Errorf("newest entry should come first, got %q", entries[0].Command)
	}
}
