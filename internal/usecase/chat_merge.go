package usecase

import (
	"sort"
	"strings"
	"time"

	"petadopt/internal/domain/entity"
)

const (
	summaryWordLimit = 7
	noMessagesText   = "No messages yet"
)

// MergeMessages flattens the conversations into one list, newest first. A message ID that
// appears more than once is kept only at its first occurrence; equal timestamps order by ID.
func MergeMessages(conversations []*entity.Conversation) []entity.Message {
	seen := make(map[string]struct{})
	merged := make([]entity.Message, 0)

	for _, c := range conversations {
		if c == nil {
			continue
		}
		for _, m := range c.Messages {
			if m.ID != "" {
				if _, dup := seen[m.ID]; dup {
					continue
				}
				seen[m.ID] = struct{}{}
			}
			merged = append(merged, m)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].ID < merged[j].ID
	})
	return merged
}

// unionConversations joins both participant roles keyed by document ID.
func unionConversations(sides ...map[string]*entity.Conversation) []*entity.Conversation {
	byID := make(map[string]*entity.Conversation)
	for _, side := range sides {
		for id, c := range side {
			if _, ok := byID[id]; !ok {
				byID[id] = c
			}
		}
	}

	out := make([]*entity.Conversation, 0, len(byID))
	for _, c := range byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := lastActivity(out[i]), lastActivity(out[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func lastActivity(c *entity.Conversation) time.Time {
	if last := c.LastMessage(); last != nil {
		return last.CreatedAt
	}
	return c.UpdatedAt
}

// TruncateWords keeps the first limit space-separated words and marks the cut with "...".
func TruncateWords(text string, limit int) string {
	words := strings.Split(text, " ")
	if len(words) > limit {
		return strings.Join(words[:limit], " ") + "..."
	}
	return text
}
