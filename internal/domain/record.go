package domain

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// MaxTags bounds the number of tags kept on a record.
const MaxTags = 5

// Record is the normalized unit produced by every source adapter.
// URL is the identity key: two records with the same URL are the same item.
type Record struct {
	Title        string
	URL          string
	Source       string
	Category     string
	Published    time.Time // zero when the source did not report a date
	Summary      string
	Content      string
	Author       string
	Tags         []string
	Score        float64
	IsTranslated bool
	ImageURL     string
	Organization string
}

// Fingerprint returns the stable identifier derived from the record URL.
func (r Record) Fingerprint() string {
	return Fingerprint(r.URL)
}

// HasPublished reports whether the source supplied a publication time.
func (r Record) HasPublished() bool {
	return !r.Published.IsZero()
}

// Body prefers the full content over the summary when it is longer.
func (r Record) Body() string {
	if len(r.Content) > len(r.Summary) {
		return r.Content
	}
	return r.Summary
}

// Fingerprint hashes a URL into the 12 hex character key used by external systems.
func Fingerprint(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])[:12]
}

// LimitTags copies at most MaxTags entries.
func LimitTags(tags []string) []string {
	if len(tags) > MaxTags {
		tags = tags[:MaxTags]
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
