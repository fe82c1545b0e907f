package memory

import "sync"

// Operation names accepted by Store.FailNext.
const (
	OpUserGetByEmail  = "users.getByEmail"
	OpUserUpdate      = "users.update"
	OpAnimalCreate    = "animals.create"
	OpWatchlistGet    = "watchlist.get"
	OpWatchlistAdd    = "watchlist.add"
	OpWatchlistRemove = "watchlist.remove"
	OpChatCreate      = "chats.create"
	OpChatAppend      = "chats.append"
)

type faults struct {
	mu      sync.Mutex
	pending map[string]error
}

func (f *faults) set(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pending == nil {
		f.pending = make(map[string]error)
	}
	f.pending[op] = err
}

// take returns and clears the injected error for op.
func (f *faults) take(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err, ok := f.pending[op]
	if !ok {
		return nil
	}
	delete(f.pending, op)
	return err
}
