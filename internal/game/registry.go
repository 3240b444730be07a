package game

import (
	"math/rand"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Kingvinu7/Riddly-sub000/internal/models"
)

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ"

// Registry is the process-wide room table. It only creates, looks up
// and deletes sessions; everything inside a room is the session's own
// business.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Session
	deps  Deps
	opts  Options
}

func NewRegistry(deps Deps, opts Options) *Registry {
	return &Registry{
		rooms: make(map[string]*Session),
		deps:  deps,
		opts:  opts,
	}
}

// CreateRoom makes a fresh session with the creator as its sole
// player and returns the generated room code.
func (r *Registry) CreateRoom(clientID, name string) (*Session, string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := r.generateCodeLocked()
	creator := &models.Player{ClientID: clientID, Name: name}
	session := NewSession(code, creator, r.deps, r.opts)
	r.rooms[code] = session

	log.Info().Str("room", code).Str("creator", name).Msg("room created")
	return session, code
}

func (r *Registry) Get(code string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return session, nil
}

// JoinRoom adds the player to an existing room.
func (r *Registry) JoinRoom(code, clientID, name string) (*Session, []*models.Player, error) {
	session, err := r.Get(code)
	if err != nil {
		return nil, nil, err
	}
	roster, err := session.Join(clientID, name)
	if err != nil {
		return nil, nil, err
	}
	return session, roster, nil
}

// RemovePlayer drops the player; an emptied room is deleted together
// with any timer it still had running.
func (r *Registry) RemovePlayer(code, clientID string) {
	session, err := r.Get(code)
	if err != nil {
		return
	}
	if _, empty := session.Remove(clientID); empty {
		r.mu.Lock()
		delete(r.rooms, code)
		r.mu.Unlock()
		log.Info().Str("room", code).Msg("room deleted")
	}
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// generateCodeLocked retries until the short code is unoccupied.
func (r *Registry) generateCodeLocked() string {
	for {
		b := make([]byte, r.opts.CodeLength)
		for i := range b {
			b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
		}
		code := string(b)
		if _, taken := r.rooms[code]; !taken {
			return code
		}
	}
}
