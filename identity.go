package main

import (
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/minio/highwayhash"
)

// Fixed key: identities must be stable across processes and machines.
var identityKey = []byte("cargo-play/v1 fingerprint key..0")

// projectIdentity fingerprints one run: the ordered (path, content) pairs
// plus the rendered manifest. Any changed byte, added file, or reordered
// argument yields a new identity; byte-identical input always yields the
// same one.
func projectIdentity(files []SourceFile, manifest []byte) (string, error) {
	h, err := highwayhash.New64(identityKey)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		h.Write([]byte(f.Path))
		h.Write([]byte{0})
		h.Write(f.Raw)
		h.Write([]byte{0})
	}
	h.Write(manifest)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)), nil
}

// packageName derives the synthesized package's name from the input paths
// alone, so that it can be embedded in the manifest without the manifest
// hashing itself. Paths are sorted first: the name must not depend on
// argument order.
func packageName(paths []string) (string, error) {
	h, err := highwayhash.New64(identityKey)
	if err != nil {
		return "", err
	}
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	for _, p := range sorted {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("play-%016x", h.Sum64()), nil
}
