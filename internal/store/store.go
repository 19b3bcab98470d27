// Package store defines the storage adapter contract the orchestrator
// consumes (spec.md §6.1: users, credentials, challenges, sessions) and a
// reference in-memory implementation of each. Real deployments supply
// their own adapters (SQL, Redis, …); this core only needs the interface
// and something to test against, grounded in the teacher's
// composite-store pattern (internal/application/composite_store.go) for
// the shape of a multi-table storage surface and its file-based in-memory
// test doubles (internal/ou/file_based_store.go).
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by a user or credential lookup, or by an update
// or delete, that found no record. ChallengeStore.Find and
// SessionStore.Find do not return it: they return (nil, nil) instead.
// Callers translate this into the taxonomy code appropriate to the
// operation (CredentialNotFound, SessionNotFound, …).
var ErrNotFound = errors.New("store: not found")

// NewUserID returns a fresh random identifier suitable for User.ID, for
// callers that don't already have an application-side user identifier
// scheme of their own.
func NewUserID() string {
	return uuid.New().String()
}

// User is the minimal application-identity record the users sub-store
// persists. The core itself never reads this; it is offered purely for
// caller convenience, per spec.md §6.1.
type User struct {
	ID          string
	Username    string
	DisplayName string
}

// UserStore is the users sub-capability. Not consumed by the core
// directly.
type UserStore interface {
	FindByID(id string) (*User, error)
	FindByUsername(username string) (*User, error)
	Create(u User) error
	Update(u User) error
	Delete(id string) error
}

// Credential is the storage-layer view of a registered WebAuthn
// credential; the root package's WebAuthnCredential is the caller-facing
// equivalent and adapters commonly translate between the two at the
// boundary.
type Credential struct {
	CredentialID   []byte
	PublicKeyCOSE  []byte
	Counter        uint32
	Transports     []string
	DeviceType     string
	BackedUp       bool
	UserID         string
	WebAuthnUserID []byte
	AAGUID         []byte
	CreatedAt      time.Time
	LastUsedAt     *time.Time
	CloneWarning   bool
}

// CredentialStore is the credentials sub-capability, spec.md §6.1.
type CredentialStore interface {
	FindByID(credentialID []byte) (*Credential, error)
	FindByUserID(userID string) ([]Credential, error)
	FindByWebAuthnUserID(webAuthnUserID []byte) (*Credential, error)
	Create(c Credential) error
	UpdateCounter(credentialID []byte, newCounter uint32) error
	UpdateLastUsed(credentialID []byte, at time.Time) error
	Delete(credentialID []byte) error
	DeleteByUserID(userID string) error
}

// ChallengeData is the transient, TTL-bound challenge record, spec.md §3.
type ChallengeData struct {
	Challenge string
	UserID    string
	Operation string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ChallengeStore is the challenges sub-capability. Find returns
// (nil, nil) — not ErrNotFound — when the record is absent or has
// expired, matching spec.md §6.1's "returning null when expired".
type ChallengeStore interface {
	Create(c ChallengeData) error
	Find(challenge string) (*ChallengeData, error)
	Delete(challenge string) error
	DeleteExpired(now time.Time) error
}

// SessionRecord is the persisted session, spec.md §3.
type SessionRecord struct {
	SessionID    string
	UserID       string
	CredentialID []byte
	UserVerified bool
	ExpiresAt    time.Time
	Extra        map[string]interface{}
}

// SessionStore is the sessions sub-capability. Find returns (nil, nil)
// when the record is absent or has expired, same convention as
// ChallengeStore.
type SessionStore interface {
	Create(sessionID string, s SessionRecord) error
	Find(sessionID string) (*SessionRecord, error)
	Update(sessionID string, s SessionRecord) error
	Delete(sessionID string) error
	DeleteExpired(now time.Time) error
	DeleteByUserID(userID string) error
}

// Adapter bundles all four sub-stores, the unit a caller hands the
// orchestrator. Any of the four may be nil; the orchestrator treats a nil
// sub-store as "this capability is not backed", per spec.md §4.J's "if a
// challenge store is present" / "if a session store is present" language.
type Adapter struct {
	Users       UserStore
	Credentials CredentialStore
	Challenges  ChallengeStore
	Sessions    SessionStore
}

// memory is the shared, mutex-guarded state behind every in-memory
// sub-store. It is kept as one struct so the four reference adapters stay
// consistent with one another the way a single database would, without
// forcing all four Go interfaces onto a single receiver (their method
// names collide: UserStore.FindByID and CredentialStore.FindByID have
// different signatures and cannot both be satisfied by one type).
type memory struct {
	mu sync.RWMutex

	users       map[string]User
	usersByName map[string]string

	credentials map[string]Credential

	challenges map[string]ChallengeData

	sessions map[string]SessionRecord
}

// NewInMemoryAdapter returns an Adapter backed entirely by in-process
// maps, suitable for tests and single-process deployments.
func NewInMemoryAdapter() *Adapter {
	m := &memory{
		users:       make(map[string]User),
		usersByName: make(map[string]string),
		credentials: make(map[string]Credential),
		challenges:  make(map[string]ChallengeData),
		sessions:    make(map[string]SessionRecord),
	}
	return &Adapter{
		Users:       &inMemoryUserStore{m: m},
		Credentials: &inMemoryCredentialStore{m: m},
		Challenges:  &inMemoryChallengeStore{m: m},
		Sessions:    &inMemorySessionStore{m: m},
	}
}

// --- UserStore ---

type inMemoryUserStore struct{ m *memory }

func (s *inMemoryUserStore) FindByID(id string) (*User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *inMemoryUserStore) FindByUsername(username string) (*User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	id, ok := s.m.usersByName[username]
	if !ok {
		return nil, ErrNotFound
	}
	u := s.m.users[id]
	return &u, nil
}

func (s *inMemoryUserStore) Create(u User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.users[u.ID] = u
	s.m.usersByName[u.Username] = u.ID
	return nil
}

func (s *inMemoryUserStore) Update(u User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.users[u.ID]; !ok {
		return ErrNotFound
	}
	s.m.users[u.ID] = u
	s.m.usersByName[u.Username] = u.ID
	return nil
}

func (s *inMemoryUserStore) Delete(id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.m.users, id)
	delete(s.m.usersByName, u.Username)
	return nil
}

// --- CredentialStore ---

type inMemoryCredentialStore struct{ m *memory }

func credKey(credentialID []byte) string { return string(credentialID) }

func (s *inMemoryCredentialStore) FindByID(credentialID []byte) (*Credential, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	c, ok := s.m.credentials[credKey(credentialID)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := c
	return &cp, nil
}

func (s *inMemoryCredentialStore) FindByUserID(userID string) ([]Credential, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var out []Credential
	for _, c := range s.m.credentials {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *inMemoryCredentialStore) FindByWebAuthnUserID(webAuthnUserID []byte) (*Credential, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, c := range s.m.credentials {
		if string(c.WebAuthnUserID) == string(webAuthnUserID) {
			cp := c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *inMemoryCredentialStore) Create(c Credential) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.credentials[credKey(c.CredentialID)] = c
	return nil
}

func (s *inMemoryCredentialStore) UpdateCounter(credentialID []byte, newCounter uint32) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	key := credKey(credentialID)
	c, ok := s.m.credentials[key]
	if !ok {
		return ErrNotFound
	}
	c.Counter = newCounter
	s.m.credentials[key] = c
	return nil
}

func (s *inMemoryCredentialStore) UpdateLastUsed(credentialID []byte, at time.Time) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	key := credKey(credentialID)
	c, ok := s.m.credentials[key]
	if !ok {
		return ErrNotFound
	}
	t := at
	c.LastUsedAt = &t
	s.m.credentials[key] = c
	return nil
}

func (s *inMemoryCredentialStore) Delete(credentialID []byte) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	key := credKey(credentialID)
	if _, ok := s.m.credentials[key]; !ok {
		return ErrNotFound
	}
	delete(s.m.credentials, key)
	return nil
}

func (s *inMemoryCredentialStore) DeleteByUserID(userID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for k, c := range s.m.credentials {
		if c.UserID == userID {
			delete(s.m.credentials, k)
		}
	}
	return nil
}

// --- ChallengeStore ---

type inMemoryChallengeStore struct{ m *memory }

func (s *inMemoryChallengeStore) Create(c ChallengeData) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.challenges[c.Challenge] = c
	return nil
}

func (s *inMemoryChallengeStore) Find(challenge string) (*ChallengeData, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	c, ok := s.m.challenges[challenge]
	if !ok {
		return nil, nil
	}
	if !c.ExpiresAt.After(time.Now()) {
		return nil, nil
	}
	return &c, nil
}

func (s *inMemoryChallengeStore) Delete(challenge string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.challenges, challenge)
	return nil
}

func (s *inMemoryChallengeStore) DeleteExpired(now time.Time) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for k, c := range s.m.challenges {
		if !c.ExpiresAt.After(now) {
			delete(s.m.challenges, k)
		}
	}
	return nil
}

// --- SessionStore ---

type inMemorySessionStore struct{ m *memory }

func (s *inMemorySessionStore) Create(sessionID string, rec SessionRecord) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.sessions[sessionID] = rec
	return nil
}

func (s *inMemorySessionStore) Find(sessionID string) (*SessionRecord, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	rec, ok := s.m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	if !rec.ExpiresAt.After(time.Now()) {
		return nil, nil
	}
	return &rec, nil
}

func (s *inMemorySessionStore) Update(sessionID string, rec SessionRecord) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.sessions[sessionID]; !ok {
		return ErrNotFound
	}
	s.m.sessions[sessionID] = rec
	return nil
}

func (s *inMemorySessionStore) Delete(sessionID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.sessions, sessionID)
	return nil
}

func (s *inMemorySessionStore) DeleteExpired(now time.Time) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for k, rec := range s.m.sessions {
		if !rec.ExpiresAt.After(now) {
			delete(s.m.sessions, k)
		}
	}
	return nil
}

func (s *inMemorySessionStore) DeleteByUserID(userID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for k, rec := range s.m.sessions {
		if rec.UserID == userID {
			delete(s.m.sessions, k)
		}
	}
	return nil
}
