// Package identity derives durable identities for discovered controls: a
// content fingerprint for cross-session matching and locator-bundle
// resolution for re-finding elements after a re-render.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// Fingerprint computes the content hash of a field from its normalized
// label, options, and type.
//
// The payload shape is a hard cross-implementation contract shared with the
// mapping backend: compact JSON with alphabetical key order
// {"label":...,"options":[...],"type":...}, hashed with SHA-256 and
// truncated to the first 32 lowercase hex characters (128 bits).
//
// This is a content hash, not an identity hash: two visually distinct fields
// with identical normalized text collide on purpose.
func Fingerprint(label string, options []string, typ string) string {
	norm := make([]string, 0, len(options))
	for _, o := range options {
		norm = append(norm, NormalizeText(o))
	}
	sort.Strings(norm)

	payload := fingerprintPayload(NormalizeText(label), norm, strings.ToLower(strings.TrimSpace(typ)))
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])[:32]
}

// fingerprintPayload builds the canonical JSON payload. Kept separate so the
// wire shape itself is testable without pinning digests.
func fingerprintPayload(label string, options []string, typ string) []byte {
	if options == nil {
		options = []string{}
	}
	// Struct field order matches the required alphabetical key order.
	payload := struct {
		Label   string   `json:"label"`
		Options []string `json:"options"`
		Type    string   `json:"type"`
	}{label, options, typ}

	data, err := json.Marshal(payload)
	if err != nil {
		// Marshal of plain strings cannot fail; keep the signature simple.
		panic("identity: fingerprint payload: " + err.Error())
	}
	return data
}

// NormalizeText lowercases, replaces every character outside [a-z0-9 ] with
// a space, and collapses runs of whitespace. The same normalization applies
// to labels and option texts so that cosmetic markup differences never
// change a fingerprint.
func NormalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
