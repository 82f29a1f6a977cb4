package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainState  = "ruleboard/state/v1"
	DomainRules  = "ruleboard/rules/v1"
	DomainRecord = "ruleboard/record/v1"
	DomainLevel  = "ruleboard/level/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash hashes the canonical JSON of v under domain.
func ContentHash(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("content hash %s: %w", domain, err)
	}
	return hashWithDomain(domain, canonical), nil
}

// BytesHash hashes already-serialized data under domain.
func BytesHash(domain string, data []byte) string {
	return hashWithDomain(domain, data)
}

// RuleSetHash hashes an ordered rule list.
func RuleSetHash(rules []Rule) string {
	arr := make([]any, len(rules))
	for i, r := range rules {
		arr[i] = RuleMap(r)
	}
	// Rule maps hold only strings; marshaling cannot fail.
	h, _ := ContentHash(DomainRules, arr)
	return h
}

// StateHash hashes objects and rules together. Two boards with equal hashes
// are indistinguishable to the engine.
func StateHash(objects []Object, rules []Rule) string {
	objs := make([]any, len(objects))
	for i, o := range objects {
		objs[i] = ObjectMap(o)
	}
	rs := make([]any, len(rules))
	for i, r := range rules {
		rs[i] = RuleMap(r)
	}
	h, _ := ContentHash(DomainState, map[string]any{
		"objects": objs,
		"rules":   rs,
	})
	return h
}
