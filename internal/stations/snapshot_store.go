package stations

import "sync"

// SnapshotStore is a thread-safe in-memory store for station snapshots,
// indexed by network ID. A snapshot is only ever replaced as a whole.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[int]*Snapshot
}

// NewSnapshotStore initializes and returns a new instance of SnapshotStore.
// The underlying map is lazily initialized on first use in Set.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Set publishes snap as the current snapshot of its network.
func (s *SnapshotStore) Set(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[int]*Snapshot)
	}
	s.data[snap.NetworkID] = snap
}

// Get retrieves the current snapshot of a network.
func (s *SnapshotStore) Get(networkID int) (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, exists := s.data[networkID]
	return snap, exists
}

// Delete drops the snapshot of a network that is no longer configured.
func (s *SnapshotStore) Delete(networkID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, networkID)
}

// Len returns the number of networks with a loaded snapshot.
func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// NetworkIDs returns the ids of all networks with a loaded snapshot.
func (s *SnapshotStore) NetworkIDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids
}
