package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-hrms-client/tenants"
	"github.com/jrsteele09/go-hrms-client/users"
	"github.com/rs/zerolog"
)

const stateFileName = "session.json"

var _ Store = (*FileStore)(nil)

// fileState is the on-disk layout. The four slots mirror the storage keys
// the web client keeps in localStorage.
type fileState struct {
	AccessToken  string          `json:"hrms_access_token,omitempty"`
	RefreshToken string          `json:"hrms_refresh_token,omitempty"`
	User         *users.User     `json:"hrms_user,omitempty"`
	Tenant       *tenants.Tenant `json:"hrms_tenant,omitempty"`
}

// FileStore persists session state as a single JSON document in a data
// folder. Replacement is atomic (temp file + rename), so a reader never
// observes a half-written token pair. When the folder cannot be created
// the store degrades to an always-absent, write-dropping store instead of
// failing, which covers non-interactive environments with no writable home.
type FileStore struct {
	path        string
	unavailable bool
	lock        sync.Mutex
	log         zerolog.Logger
}

// NewFileStore creates a file-backed store rooted at dataFolder.
func NewFileStore(dataFolder string, logger zerolog.Logger) *FileStore {
	fs := &FileStore{
		path: filepath.Join(dataFolder, stateFileName),
		log:  logger,
	}
	if err := os.MkdirAll(dataFolder, 0o700); err != nil {
		logger.Debug().Err(err).Str("folder", dataFolder).Msg("session store unavailable")
		fs.unavailable = true
	}
	return fs
}

func (fs *FileStore) Read() *Session {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	state := fs.load()
	if state.AccessToken == "" || state.RefreshToken == "" {
		return nil
	}
	return &Session{AccessToken: state.AccessToken, RefreshToken: state.RefreshToken}
}

func (fs *FileStore) Write(session Session) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	state := fs.load()
	state.AccessToken = session.AccessToken
	state.RefreshToken = session.RefreshToken
	fs.save(state)
}

func (fs *FileStore) Clear() {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.unavailable {
		return
	}
	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		fs.log.Debug().Err(err).Msg("failed to clear session state")
	}
}

func (fs *FileStore) CachedUser() *users.User {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	return fs.load().User
}

func (fs *FileStore) WriteCachedUser(user *users.User) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	state := fs.load()
	state.User = user
	fs.save(state)
}

func (fs *FileStore) CachedTenant() *tenants.Tenant {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	return fs.load().Tenant
}

func (fs *FileStore) WriteCachedTenant(tenant *tenants.Tenant) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	state := fs.load()
	state.Tenant = tenant
	fs.save(state)
}

// load reads the state document, returning a zero state for any failure.
// Callers must hold the lock.
func (fs *FileStore) load() fileState {
	var state fileState
	if fs.unavailable {
		return state
	}
	data, err := os.ReadFile(fs.path)
	if err != nil {
		return state
	}
	if err := json.Unmarshal(data, &state); err != nil {
		fs.log.Debug().Err(err).Msg("malformed session state, treating as absent")
		return fileState{}
	}
	return state
}

// save atomically replaces the state document. Callers must hold the lock.
func (fs *FileStore) save(state fileState) {
	if fs.unavailable {
		return
	}
	data, err := json.Marshal(state)
	if err != nil {
		fs.log.Debug().Err(err).Msg("failed to encode session state")
		return
	}
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		fs.log.Debug().Err(err).Msg("failed to write session state")
		return
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		fs.log.Debug().Err(err).Msg("failed to replace session state")
	}
}
