package persona

import "hash/fnv"

// Store exposes persona retrieval for the lifecycle manager.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
	// Assign deterministically pins a persona to a session id so the
	// same session always speaks with the same voice.
	Assign(sessionID string) Persona
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	return &MemoryStore{items: append([]Persona(nil), items...)}
}

// List returns the persona list.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// FindByID looks up a persona by identifier.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Persona{}, false
}

// Assign hashes the session id onto the persona list.
func (s *MemoryStore) Assign(sessionID string) Persona {
	if len(s.items) == 0 {
		return Persona{ID: "default", Name: "Anil", Tone: "confused but polite"}
	}
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return s.items[int(h.Sum32())%len(s.items)]
}
