package content

import (
	"strings"

	"forum-importer/core/utils"
	"forum-importer/feature/zendesk/models"
)

const maxTagLength = 255

// TagCache holds the tag derived from each forum's name, computed on first use.
type TagCache struct {
	tags map[int64]string
}

// NewTagCache creates an empty cache.
func NewTagCache() *TagCache {
	return &TagCache{tags: make(map[int64]string)}
}

// ForumTag returns the tag of forum.
func (c *TagCache) ForumTag(forum models.Forum) string {
	if tag, ok := c.tags[forum.ForumID]; ok {
		return tag
	}
	tag := ForumTag(forum.Name)
	c.tags[forum.ForumID] = tag
	return tag
}

// ForumTag derives a tag from a forum name: lower-cased, whitespace runs
// replaced by a single "-".
func ForumTag(name string) string {
	return utils.Truncate(strings.ToLower(utils.CollapseWhitespace(name, "-")), maxTagLength)
}

// EntryTags returns the tags of a thread: the forum tag, then the entry's own
// whitespace-separated tags, without duplicates or empty names.
func EntryTags(forumTag, staged string) []string {
	tags := make([]string, 0, 4)
	seen := make(map[string]struct{})
	add := func(tag string) {
		tag = utils.Truncate(tag, maxTagLength)
		if tag == "" {
			return
		}
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	add(forumTag)
	for _, tag := range utils.SplitFields(staged) {
		add(tag)
	}
	return tags
}
