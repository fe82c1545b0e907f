package entity

// Watchlist is stored at watchlist/{userID}.
type Watchlist struct {
	UserID    string   `json:"user_id" firestore:"-"`
	AnimalIDs []string `json:"animals_id" firestore:"animals_id"`
}

// Members returns the stored IDs with duplicates collapsed, first occurrence order.
func (w *Watchlist) Members() []string {
	if w == nil {
		return []string{}
	}
	seen := make(map[string]struct{}, len(w.AnimalIDs))
	members := make([]string, 0, len(w.AnimalIDs))
	for _, id := range w.AnimalIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}
	return members
}
