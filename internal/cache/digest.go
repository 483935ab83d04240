// Package cache implements the call cache (§4.9): a file-per-entry disk
// store keyed by a content digest over everything a task execution depends
// on (command text, container, shell, requirements, hints, and inputs), so
// a rerun of the same task against the same inputs can reuse a prior
// result instead of re-executing.
//
// The digest layer is grounded on the teacher's internal/driver/hashcalc.go
// combineDigest, which hashes a node's own content together with its
// dependencies' digests using stdlib crypto/sha256; no hashing library
// appears anywhere in the examples pack, so sha256 is kept as the stdlib
// fallback for a concern with no ecosystem analogue in the corpus. The
// spec's "single keyed 256-bit hash function" requirement is met with
// crypto/hmac over sha256, keyed by a fixed schema key so bumping
// schemaVersion invalidates every previously computed digest at once.
package cache

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sort"
)

// Digest is a 256-bit content digest, hex-encoded for use as a cache key
// and a file name.
type Digest [32]byte

// schemaVersion is folded into every digest's HMAC key (§4.9 "a schema
// version" is part of what get() validates). Bumping it invalidates the
// entire disk cache without needing to touch existing entries: old
// entries simply stop matching any digest computed under the new key.
const schemaVersion = 1

func hmacKey() []byte {
	return []byte{byte(schemaVersion), 'w', 'd', 'l', 'c', '-', 'c', 'a', 'c', 'h', 'e'}
}

// String returns the digest's lowercase hex encoding, the same form used
// as both the cache-entry file name and the map/pair/array digest input.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// digestTagged computes a keyed digest over a tag (distinguishing scalar
// kinds, files, directories, and the various dependency lists from one
// another so, e.g., a File and a String holding the same path never
// collide) and a payload.
func digestTagged(tag string, payload []byte) Digest {
	mac := hmac.New(sha256.New, hmacKey())
	mac.Write([]byte(tag))
	mac.Write([]byte{0}) // separator: tag is never binary, payload may be
	mac.Write(payload)
	var out Digest
	copy(out[:], mac.Sum(nil))
	return out
}

// DigestScalar hashes a primitive value's textual representation: an Int,
// Float, String, or Boolean argument to a task (§4.9 "scalars hash a
// tagged payload").
func DigestScalar(kind, repr string) Digest {
	return digestTagged("scalar:"+kind, []byte(repr))
}

// DigestFileContent hashes a local file's bytes directly (§4.9 "files...
// hash canonical content"). The caller resolves any remote URI to a local
// path via the transferer before calling this.
func DigestFileContent(path string) (Digest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Digest{}, err
	}
	return digestTagged("file", content), nil
}

// DigestDirectory hashes a directory's sorted list of (relative child
// name, child digest) pairs (§4.9 "directories hash [a] sorted child
// digest list"), so the same pairs hash identically whatever order the
// map yields them in; a child's name is part of the hashed payload, so
// renaming a child changes the directory's digest.
func DigestDirectory(children map[string]Digest) Digest {
	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	sort.Strings(names)

	var payload []byte
	for _, name := range names {
		child := children[name]
		payload = append(payload, []byte(name)...)
		payload = append(payload, 0)
		payload = append(payload, child[:]...)
	}
	return digestTagged("dir", payload)
}

// CombineDigests folds a sequence of named sub-digests (command text,
// container image, shell, requirements, hints, each input binding) into a
// single cache key, mirroring combineDigest's "hash my own content plus
// each dependency's digest" shape from the teacher, generalized from a
// positional list to named fields so a get() can report which field
// mismatched.
func CombineDigests(parts map[string]Digest) Digest {
	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	var payload []byte
	for _, name := range names {
		d := parts[name]
		payload = append(payload, []byte(name)...)
		payload = append(payload, 0)
		payload = append(payload, d[:]...)
	}
	return digestTagged("combine", payload)
}
