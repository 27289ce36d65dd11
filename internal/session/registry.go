// Package session содержит реестр активных сессий пользователей.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL задаёт окно простоя, по истечении которого сессия считается
// устаревшей.
const DefaultTTL = 30 * time.Minute

// ErrSessionNotFound возвращается для неизвестного токена.
var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired возвращается, если сессия превысила окно простоя.
	ErrSessionExpired = errors.New("session expired")
)

type entry struct {
	userID       string
	lastAccessed time.Time
}

// Registry хранит сопоставление токен → пользователь в памяти процесса.
// Сессии не переживают перезапуск: все пользователи проходят повторный вход.
type Registry struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*entry
	now      func() time.Time
}

// NewRegistry создаёт реестр с указанным окном простоя.
// Неположительный ttl заменяется на DefaultTTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		ttl:      ttl,
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// Create регистрирует новую сессию пользователя и возвращает её токен.
// Токен — случайный UUID v4, сгенерированный из crypto/rand.
func (r *Registry) Create(userID string) string {
	token := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[token] = &entry{userID: userID, lastAccessed: r.now()}
	return token
}

// Resolve возвращает идентификатор пользователя по токену. Сессия,
// превысившая окно простоя, удаляется из реестра с ошибкой
// ErrSessionExpired; повторный запрос того же токена даёт
// ErrSessionNotFound. Успешное разрешение продлевает сессию.
func (r *Registry) Resolve(token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[token]
	if !ok {
		return "", ErrSessionNotFound
	}

	now := r.now()
	if now.Sub(e.lastAccessed) > r.ttl {
		delete(r.sessions, token)
		return "", ErrSessionExpired
	}

	e.lastAccessed = now
	return e.userID, nil
}

// Revoke удаляет сессию. Неизвестный токен игнорируется.
func (r *Registry) Revoke(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, token)
}
