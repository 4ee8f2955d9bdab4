package ir

import (
	"fmt"

	"github.com/mitchellh/hashstructure/v2"
)

// SourceHash computes a stable structural hash of source text, used as
// Metadata.SourceHash and as half of the pipeline driver's cache key
// (SPEC_FULL ambient stack "Hashing"; go-mysql-server dependency
// mitchellh/hashstructure/v2, chosen over a plain crypto hash because the
// driver also needs to hash config values, and hashstructure covers both
// with one library).
func SourceHash(source string) string {
	h, err := hashstructure.Hash(source, hashstructure.FormatV2, nil)
	if err != nil {
		// hashstructure only errors on unsupported types; a string never
		// hits that path, so this is unreachable in practice.
		return ""
	}
	return fmt.Sprintf("%x", h)
}

// ConfigHash computes a stable structural hash of an arbitrary config
// value, used to key the driver's optional cache alongside SourceHash.
func ConfigHash(cfg any) (string, error) {
	h, err := hashstructure.Hash(cfg, hashstructure.FormatV2, nil)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h), nil
}
