package storefakes

import (
	"sync"

	"github.com/jrsteele09/go-hrms-client/store"
	"github.com/jrsteele09/go-hrms-client/tenants"
	"github.com/jrsteele09/go-hrms-client/users"
)

var _ store.Store = (*FakeStore)(nil)

// FakeStore is an in-memory Store for tests.
type FakeStore struct {
	session *store.Session
	user    *users.User
	tenant  *tenants.Tenant
	lock    sync.RWMutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

func (fs *FakeStore) Read() *store.Session {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	if fs.session == nil {
		return nil
	}
	session := *fs.session
	return &session
}

func (fs *FakeStore) Write(session store.Session) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.session = &session
}

func (fs *FakeStore) Clear() {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.session = nil
	fs.user = nil
	fs.tenant = nil
}

func (fs *FakeStore) CachedUser() *users.User {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	return fs.user
}

func (fs *FakeStore) WriteCachedUser(user *users.User) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.user = user
}

func (fs *FakeStore) CachedTenant() *tenants.Tenant {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	return fs.tenant
}

func (fs *FakeStore) WriteCachedTenant(tenant *tenants.Tenant) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.tenant = tenant
}
