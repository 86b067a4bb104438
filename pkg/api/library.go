package api

import (
	"sync"

	"github.com/google/uuid"
	"github.com/james-see/pianosteps/pkg/song"
)

// Library keeps uploaded songs in memory, keyed by id
type Library struct {
	mu    sync.RWMutex
	songs map[string]*song.Song
	order []string
	limit int
}

// NewLibrary creates a library holding at most limit songs. The oldest song
// is evicted when the limit is reached. A limit of zero means unbounded.
func NewLibrary(limit int) *Library {
	return &Library{songs: make(map[string]*song.Song), limit: limit}
}

// Add stores s and returns its id
func (l *Library) Add(s *song.Song) string {
	id := uuid.NewString()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.limit > 0 && len(l.order) >= l.limit {
		oldest := l.order[0]
		l.order = l.order[1:]
		delete(l.songs, oldest)
	}
	l.songs[id] = s
	l.order = append(l.order, id)
	return id
}

// Get returns the song with the given id
func (l *Library) Get(id string) (*song.Song, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.songs[id]
	return s, ok
}

// Len returns the number of stored songs
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.songs)
}
