package domain

import (
	"crypto/md5"
	"encoding/hex"
)

// Article is a single listing entry pulled from a source.
type Article struct {
	Title         string
	URL           string
	OriginalTitle string
}

// IdentityTitle returns the title the article was first seen with.
// Translation keeps the pre-translation title in OriginalTitle, so the
// identity never shifts after a title is rewritten.
func (a Article) IdentityTitle() string {
	if a.OriginalTitle != "" {
		return a.OriginalTitle
	}
	return a.Title
}

// Fingerprint is the dedup key: an MD5 digest over identity title and URL.
// Collision resistance is not security-relevant here; uniqueness within
// the stored corpus is all that matters.
func (a Article) Fingerprint() string {
	sum := md5.Sum([]byte(a.IdentityTitle() + "|" + a.URL))
	return hex.EncodeToString(sum[:])
}

// SeenRecord is a persisted article fingerprint with its context.
// Records are created once, never mutated, and removed only by
// retention cleanup.
type SeenRecord struct {
	Fingerprint string
	Title       string
	URL         string
	SourceName  string
	CreatedAt   string
}
