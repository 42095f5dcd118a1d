package staging

import (
	"context"
	"fmt"

	"forum-importer/core/reconcile"
	"forum-importer/feature/zendesk/models"
)

// KindStats counts the staged and bridged records of one kind.
type KindStats struct {
	Kind    reconcile.Kind `json:"kind"`
	Staged  int64          `json:"staged"`
	Bridged int64          `json:"bridged"`
}

// ForumStats describes one staged forum and how much of it was imported.
type ForumStats struct {
	ForumID    int64  `json:"forum_id"`
	Name       string `json:"name"`
	Importable bool   `json:"importable"`
	Entries    int64  `json:"entries"`
	Bridged    int64  `json:"bridged"`
}

// Stats counts staged and bridged records per kind. Forums have no bridge of
// their own; a forum counts as bridged once one of its entries is.
func (s *Store) Stats(ctx context.Context) ([]KindStats, error) {
	db := s.db.WithContext(ctx)
	stats := []KindStats{
		{Kind: reconcile.KindUser},
		{Kind: reconcile.KindForum},
		{Kind: reconcile.KindEntry},
		{Kind: reconcile.KindPost},
	}

	counts := []struct {
		dest  *int64
		model any
		where string
	}{
		{&stats[0].Staged, &models.User{}, ""},
		{&stats[0].Bridged, &models.User{}, "target_user_id IS NOT NULL"},
		{&stats[1].Staged, &models.Forum{}, ""},
		{&stats[2].Staged, &models.Entry{}, ""},
		{&stats[2].Bridged, &models.Entry{}, "target_content_id IS NOT NULL"},
		{&stats[3].Staged, &models.Post{}, ""},
		{&stats[3].Bridged, &models.Post{}, "target_content_id IS NOT NULL"},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count staged records: %w", err)
		}
	}

	err := db.Model(&models.Entry{}).
		Where("target_content_id IS NOT NULL").
		Distinct("forum_id").
		Count(&stats[1].Bridged).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count bridged forums: %w", err)
	}

	return stats, nil
}

// ForumStats lists every staged forum with its entry counts.
func (s *Store) ForumStats(ctx context.Context) ([]ForumStats, error) {
	forums, err := s.Forums(ctx)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ForumID int64
		Entries int64
		Bridged int64
	}
	err = s.db.WithContext(ctx).Model(&models.Entry{}).
		Select("forum_id, COUNT(*) AS entries, COUNT(target_content_id) AS bridged").
		Group("forum_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count staged entries per forum: %w", err)
	}

	byForum := make(map[int64]int, len(rows))
	for i, r := range rows {
		byForum[r.ForumID] = i
	}

	out := make([]ForumStats, 0, len(forums))
	for _, f := range forums {
		fs := ForumStats{ForumID: f.ForumID, Name: f.Name, Importable: f.ViewableToPublic()}
		if i, ok := byForum[f.ForumID]; ok {
			fs.Entries = rows[i].Entries
			fs.Bridged = rows[i].Bridged
		}
		out = append(out, fs)
	}
	return out, nil
}
