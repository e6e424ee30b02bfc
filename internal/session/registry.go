// Package session owns the in-memory per-user RAG state: the single
// active corpus and the similarity index built over it.
package session

import (
	"sync"

	"docqa/internal/rag"
)

// Source kinds for an active corpus.
const (
	SourceFile = "file"
	SourceURL  = "url"
)

// Corpus is the one document a user currently has indexed. A user has at
// most one; replacing it releases the previous index.
type Corpus struct {
	SourceName    string
	SourceKind    string
	DocumentID    uint
	Chunks        []rag.Chunk
	Index         *rag.Index
	ContentLength int
	WordCount     int
}

// State is one user's mutable session record. The RWMutex serializes
// ingestion commits against retrieval reads for that user: readers see a
// fully committed corpus or none, never an intermediate state.
type State struct {
	mu     sync.RWMutex
	corpus *Corpus
}

// View runs fn under the read lock. fn receives nil when the user has no
// active corpus. Concurrent Views for the same user proceed in parallel;
// Replace and Clear wait for them.
func (s *State) View(fn func(*Corpus) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.corpus)
}

// Replace atomically installs c as the active corpus, releasing the
// previous corpus's index first so repeated uploads do not leak vectors.
func (s *State) Replace(c *Corpus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release()
	s.corpus = c
}

// Clear resets the state to empty, releasing any held index. Idempotent.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release()
	s.corpus = nil
}

// SetDocumentID attaches the persisted document id to the corpus, but only
// if c is still the active corpus; a concurrent Replace wins otherwise.
func (s *State) SetDocumentID(c *Corpus, id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.corpus == c {
		s.corpus.DocumentID = id
	}
}

func (s *State) release() {
	if s.corpus != nil && s.corpus.Index != nil {
		s.corpus.Index.Release()
	}
}

// Registry maps user ids to their session state. States are created on
// first access and retained for the process lifetime: Clear empties a
// state but the map itself only grows. Acceptable for the expected user
// counts; an idle-eviction pass would bound it if that changes.
type Registry struct {
	mu     sync.Mutex
	states map[uint]*State
}

func NewRegistry() *Registry {
	return &Registry{states: make(map[uint]*State)}
}

// Get returns the user's state, creating it if absent.
func (r *Registry) Get(userID uint) *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[userID]
	if !ok {
		state = &State{}
		r.states[userID] = state
	}
	return state
}

// Clear releases the user's active corpus. A user with no state or no
// corpus is a no-op.
func (r *Registry) Clear(userID uint) {
	r.mu.Lock()
	state, ok := r.states[userID]
	r.mu.Unlock()
	if ok {
		state.Clear()
	}
}
