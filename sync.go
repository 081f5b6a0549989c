package sitebridge

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// postsRequest carries the raw per-item payloads so the snapshot meta can
// store each item exactly as submitted.
type postsRequest struct {
	Posts []json.RawMessage `json:"posts"`
}

func decodePostsRequest(data []byte) (postsRequest, bool) {
	var req postsRequest
	if err := json.Unmarshal(data, &req); err != nil || len(req.Posts) == 0 {
		return postsRequest{}, false
	}
	return req, true
}

// mapPayload converts a submitted payload into a storable post record:
// plain-text fields sanitized, slug normalized, date parsed, rich content
// filtered against the HTML allowlist.
func mapPayload(pd *PostPayload) Post {
	postType := sanitizeText(pd.PostType)
	if postType == "" {
		postType = "post"
	}
	return Post{
		Title:    sanitizeText(pd.Title),
		Slug:     Slugify(pd.Slug),
		Status:   sanitizeText(pd.State),
		AuthorID: pd.Author,
		Date:     parseDate(pd.Date).Format(dateFormat),
		Excerpt:  sanitizeText(pd.Excerpt),
		Type:     postType,
		Content:  sanitizePostHTML(pd.Content),
	}
}

// applyPayloadExtras runs everything that follows the post row write: term
// assignment, the raw payload snapshot, the best-effort featured image
// sideload, and the SEO meta blocks.
func (a *App) applyPayloadExtras(postID int64, pd *PostPayload, raw json.RawMessage) {
	if err := a.assignTerms(postID, pd); err != nil {
		a.Log.Warn().Err(err).Int64("post_id", postID).Msg("assign terms")
	}
	if err := a.Store.SetPostMeta(postID, rawPostMetaKey, string(raw)); err != nil {
		a.Log.Warn().Err(err).Int64("post_id", postID).Msg("store raw payload")
	}
	a.sideloadFeaturedImage(postID, pd)
	a.writeSEOMeta(postID, pd)
}

// assignTerms resolves tags and categories (names or numeric ids; unknown
// names are created) and replaces the post's term assignments.
func (a *App) assignTerms(postID int64, pd *PostPayload) error {
	tagIDs, err := a.Store.EnsureTerms("post_tag", pd.Tags)
	if err != nil {
		return err
	}
	if err := a.Store.SetPostTerms(postID, "post_tag", tagIDs); err != nil {
		return err
	}

	var catIDs []int64
	for _, entry := range FilterEmpty(pd.Categories) {
		if n, err := strconv.ParseInt(entry, 10, 64); err == nil {
			ok, err := a.Store.TermExists("category", n)
			if err != nil {
				return err
			}
			if ok {
				catIDs = append(catIDs, n)
				continue
			}
		}
		id, err := a.Store.EnsureTerm("category", entry)
		if err != nil {
			return err
		}
		catIDs = append(catIDs, id)
	}
	return a.Store.SetPostTerms(postID, "category", catIDs)
}

// writeSEOMeta stores the three SEO settings blocks: yoast keys are stripped
// of their "yoast_" prefix and written under "_yoast_wpseo_", rankmath and
// newspack maps go in verbatim.
func (a *App) writeSEOMeta(postID int64, pd *PostPayload) {
	if len(pd.YoastSettings) > 0 {
		clean := make(map[string]any, len(pd.YoastSettings))
		for k, v := range pd.YoastSettings {
			clean[strings.ReplaceAll(k, "yoast_", "")] = v
		}
		a.setupMetadata(postID, "_yoast_wpseo_", clean)
	}
	if len(pd.RankmathSettings) > 0 {
		a.setupMetadata(postID, "", pd.RankmathSettings)
	}
	if len(pd.NewspackSettings) > 0 {
		a.setupMetadata(postID, "", pd.NewspackSettings)
	}
}

func (a *App) setupMetadata(postID int64, prefix string, fields map[string]any) {
	for k, v := range fields {
		if err := a.Store.SetPostMeta(postID, prefix+k, metaString(v)); err != nil {
			a.Log.Warn().Err(err).Int64("post_id", postID).Str("key", prefix+k).Msg("write seo meta")
		}
	}
}

// metaString stores strings as-is and everything else as JSON.
func metaString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func (a *App) permalink(slug string) string {
	return BuildURL(a.Config.URL, "posts", slug)
}

// matchByDocswriteID resolves the stored records a payload refers to.
// Non-positive ids short-circuit to no match; duplicates are returned as-is
// since uniqueness is never enforced at write time.
func (a *App) matchByDocswriteID(id int64) []int64 {
	if id <= 0 {
		return nil
	}
	ids, err := a.Store.PostIDsByMeta(postIDMetaKey, strconv.FormatInt(id, 10))
	if err != nil {
		a.Log.Warn().Err(err).Int64("docswrite_id", id).Msg("lookup by docswrite id")
		return nil
	}
	return ids
}

func (a *App) cmdPublishPosts(c echo.Context, data []byte) error {
	req, ok := decodePostsRequest(data)
	if !ok {
		return sendError(c, 0, "No posts in request")
	}

	published := 0
	permalinks := map[string]string{}
	for _, raw := range req.Posts {
		var pd PostPayload
		if err := json.Unmarshal(raw, &pd); err != nil {
			a.Log.Warn().Err(err).Msg("skip malformed post payload")
			continue
		}
		post := mapPayload(&pd)
		postID, err := a.Store.CreatePost(post)
		if err != nil {
			a.Log.Warn().Err(err).Str("title", post.Title).Msg("create post")
			continue
		}
		// The identifier used for future lookups is the record's own id.
		if err := a.Store.SetPostMeta(postID, postIDMetaKey, strconv.FormatInt(postID, 10)); err != nil {
			a.Log.Warn().Err(err).Int64("post_id", postID).Msg("store docswrite id")
		}
		a.applyPayloadExtras(postID, &pd, raw)
		permalinks[strconv.FormatInt(postID, 10)] = a.permalink(post.Slug)
		published++
	}
	a.Cache.Invalidate()
	setActivityDetail(c, "published %d of %d", published, len(req.Posts))

	if published == 0 {
		return sendError(c, 0, "No posts updated")
	}
	return sendSuccess(c, respData{
		"message":          fmt.Sprintf("Posts published: %d", published),
		"posts_permalinks": permalinks,
	})
}

func (a *App) cmdUpdatePosts(c echo.Context, data []byte) error {
	req, ok := decodePostsRequest(data)
	if !ok {
		return sendError(c, 0, "No posts in request")
	}

	updated := 0
	permalinks := map[string]string{}
	for _, raw := range req.Posts {
		var pd PostPayload
		if err := json.Unmarshal(raw, &pd); err != nil {
			a.Log.Warn().Err(err).Msg("skip malformed post payload")
			continue
		}
		for _, postID := range a.matchByDocswriteID(int64(pd.ID)) {
			post := mapPayload(&pd)
			post.ID = postID
			if err := a.Store.UpdatePost(post); err != nil {
				a.Log.Warn().Err(err).Int64("post_id", postID).Msg("update post")
				continue
			}
			a.applyPayloadExtras(postID, &pd, raw)
			permalinks[strconv.FormatInt(postID, 10)] = a.permalink(post.Slug)
			updated++
		}
	}
	a.Cache.Invalidate()
	setActivityDetail(c, "updated %d", updated)

	if updated == 0 {
		return sendError(c, 0, "No posts updated")
	}
	return sendSuccess(c, respData{
		"message":          fmt.Sprintf("Posts updated: %d", updated),
		"posts_permalinks": permalinks,
	})
}

func (a *App) cmdDeletePosts(c echo.Context, data []byte) error {
	req, ok := decodePostsRequest(data)
	if !ok {
		return sendError(c, 0, "No posts in request")
	}

	deleted := 0
	for _, raw := range req.Posts {
		var pd PostPayload
		if err := json.Unmarshal(raw, &pd); err != nil {
			a.Log.Warn().Err(err).Msg("skip malformed post payload")
			continue
		}
		for _, postID := range a.matchByDocswriteID(int64(pd.ID)) {
			ok, err := a.Store.DeletePost(postID)
			if err != nil {
				a.Log.Warn().Err(err).Int64("post_id", postID).Msg("delete post")
				continue
			}
			if ok {
				deleted++
			}
		}
	}
	a.Cache.Invalidate()
	setActivityDetail(c, "deleted %d", deleted)

	if deleted == 0 {
		return sendError(c, 0, "No posts deleted")
	}
	return sendSuccess(c, respData{"message": fmt.Sprintf("Posts deleted: %d", deleted)})
}
