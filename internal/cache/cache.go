package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/vmihailenco/msgpack/v5"
)

// diskCacheSchemaVersion is bumped whenever Entry's shape changes in a way
// that makes old entries unreadable; Get rejects any entry whose Schema
// doesn't match, the same guard the teacher's DiskPayload.Schema performs
// before diskPayloadToModule trusts a decoded payload.
const diskCacheSchemaVersion uint16 = 1

// Entry is one call cache record (§4.9): the full set of secondary
// digests a Get must re-verify before trusting a hit, plus the recorded
// result. Output values themselves are kept as caller-opaque bytes
// (component H's job to encode/decode them) so this package stays
// ignorant of the WDL value model, mirroring how DiskPayload stores only
// digests and plain fields, never live compiler objects.
type Entry struct {
	Schema uint16

	Command      Digest
	Container    Digest
	Shell        Digest
	Requirements Digest
	Hints        Digest
	Inputs       Digest

	Stdout  Digest
	Stderr  Digest
	Workdir Digest

	// Outputs holds each output declaration's caller-encoded value,
	// keyed by name.
	Outputs map[string][]byte

	// StdoutPath/StderrPath/WorkdirPath are the recorded task directory
	// members. Get does not re-hash them: it does not check that the
	// on-disk staged outputs still match what was recorded at Put time.
	StdoutPath  string
	StderrPath  string
	WorkdirPath string
}

// DiskCache is the on-disk call cache store, keyed by Digest. It is
// grounded on the teacher's internal/driver/dcache.go DiskCache: entries
// live one-per-file under a subdirectory, written via create-temp +
// msgpack-encode + atomic rename, read via msgpack-decode. Two locking
// layers are added beyond the teacher's in-process sync.RWMutex, since
// §4.9 requires cooperation across separate OS processes sharing one
// cache directory, not just goroutines in one process: a shared global
// lock file (held for the DiskCache's lifetime, so no other process
// performs cache-wide maintenance concurrently) and a per-entry
// shared/exclusive flock taken around each individual Get/Put, grounded
// on kraklabs-cie's syscall.Flock-based IndexQueue lock since no flock
// library exists anywhere in the examples pack.
type DiskCache struct {
	mu       sync.RWMutex
	dir      string
	lockFile *os.File
}

// Open initializes a call cache rooted at dir (§6: "cache directory...
// holds call cache under calls/ subdir + global .lock at its root"),
// creating it if necessary and taking a shared lock on the root's
// .lock file for the cache's lifetime.
func Open(dir string) (*DiskCache, error) {
	callsDir := filepath.Join(dir, "calls")
	if err := os.MkdirAll(callsDir, 0o755); err != nil {
		return nil, err
	}
	lockPath := filepath.Join(dir, ".lock")
	lf, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	if err := syscall.Flock(int(lf.Fd()), syscall.LOCK_SH); err != nil {
		_ = lf.Close()
		return nil, fmt.Errorf("lock cache root: %w", err)
	}
	return &DiskCache{dir: callsDir, lockFile: lf}, nil
}

// Close releases the cache's global shared lock.
func (c *DiskCache) Close() error {
	if c == nil || c.lockFile == nil {
		return nil
	}
	err := syscall.Flock(int(c.lockFile.Fd()), syscall.LOCK_UN)
	closeErr := c.lockFile.Close()
	if err != nil {
		return err
	}
	return closeErr
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, key.String()+".mp")
}

// Put atomically writes entry under key, replacing any existing entry.
func (c *DiskCache) Put(key Digest, entry *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry.Schema = diskCacheSchemaVersion
	p := c.pathFor(key)

	lock, err := acquireEntryLock(p, true)
	if err != nil {
		return err
	}
	defer lock.release()

	tmp, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := msgpack.NewEncoder(tmp).Encode(entry); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, p)
}

// Get reads the entry stored under key. ok is false both when no entry
// exists and when the stored entry's schema version doesn't match the
// version this DiskCache writes (§4.9 "get(key) validates schema
// version... any mismatch is a miss").
func (c *DiskCache) Get(key Digest) (entry *Entry, ok bool, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	lock, err := acquireEntryLock(p, false)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer lock.release()

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var e Entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return nil, false, err
	}
	if e.Schema != diskCacheSchemaVersion {
		return nil, false, nil
	}
	return &e, true, nil
}

// entryLock holds one per-entry flock for the duration of a Get or Put.
type entryLock struct {
	f *os.File
}

func (l *entryLock) release() {
	if l == nil || l.f == nil {
		return
	}
	syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	l.f.Close()
}

// acquireEntryLock opens (or, for a write, creates) path and takes a
// blocking shared or exclusive flock on it, so a concurrent reader never
// observes a Put's temp-file-then-rename half-finished and two writers
// never race the same entry (§4.9 "per-entry shared(read)/exclusive
// (write) locks").
func acquireEntryLock(path string, write bool) (*entryLock, error) {
	flags := os.O_RDONLY
	if write {
		flags = os.O_CREATE | os.O_RDWR
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, err
	}
	mode := syscall.LOCK_SH
	if write {
		mode = syscall.LOCK_EX
	}
	if err := syscall.Flock(int(f.Fd()), mode); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock cache entry: %w", err)
	}
	return &entryLock{f: f}, nil
}
