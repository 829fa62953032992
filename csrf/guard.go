package csrf

import (
	"errors"
	"sync"
	"time"

	"github.com/joy-dx/csrfnet/dto"
	"github.com/joy-dx/lockablemap"
)

// GlobalKey guards the layer itself
const GlobalKey = string(dto.ADAPTER_GLOBAL)

// InstallRecord is kept for every key that was installed. Records are never removed.
type InstallRecord = dto.Installation

// Guard remembers which installations already happened.
type Guard struct {
	mu      sync.Mutex
	records *lockablemap.LockableMap[string, InstallRecord]
	now     func() time.Time
}

func NewGuard() *Guard {
	return &Guard{
		records: lockablemap.NewLockableMap[string, InstallRecord](),
		now:     time.Now,
	}
}

// InstanceKey namespaces a transport instance id by adapter
func InstanceKey(adapter dto.AdapterKind, instanceID string) string {
	return string(adapter) + "/" + instanceID
}

// InstallOnce reports true only for the first call with key.
func (g *Guard) InstallOnce(key string, adapter dto.AdapterKind) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.has(key) {
		return false
	}
	g.records.Set(key, InstallRecord{Key: key, Adapter: adapter, InstalledAt: g.now()})
	return true
}

func (g *Guard) Installed(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.has(key)
}

func (g *Guard) has(key string) bool {
	_, err := g.records.Get(key)
	var notFound *lockablemap.KeyNotFoundError
	return !errors.As(err, &notFound)
}

// Records returns a snapshot of every installation
func (g *Guard) Records() map[string]InstallRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.records.GetAll()
}
