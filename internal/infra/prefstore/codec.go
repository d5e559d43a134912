// Package prefstore persists preferences as a flat key/value "local storage":
// every value is a string, lists are JSON-encoded.
package prefstore

import (
	"encoding/json"
	"strings"

	"github.com/aalvaropc/roulette/internal/domain"
)

// encode flattens preferences into the stored key/value form.
func encode(p domain.Preferences) (map[string]string, error) {
	blocked, err := json.Marshal(nonNil(p.BlockedInstances))
	if err != nil {
		return nil, err
	}
	checked, err := json.Marshal(nonNil(p.CheckedCommunities))
	if err != nil {
		return nil, err
	}

	filter := p.Filter
	if filter == "" {
		filter = domain.DefaultFilter
	}

	return map[string]string{
		domain.KeyBlockedInstances:   string(blocked),
		domain.KeyCheckedCommunities: string(checked),
		domain.KeyNSFWFilter:         string(filter),
		domain.KeyJWT:                p.Session.JWT,
		domain.KeyUserInstance:       p.Session.Instance,
	}, nil
}

// decode applies stored values on top of defaults. Absent or empty keys keep
// the default; a present list key must hold valid JSON.
func decode(op, path string, kv map[string]string) (domain.Preferences, error) {
	p := domain.DefaultPreferences()

	if v := strings.TrimSpace(kv[domain.KeyBlockedInstances]); v != "" {
		if err := json.Unmarshal([]byte(v), &p.BlockedInstances); err != nil {
			return domain.DefaultPreferences(), invalid(op, path, domain.KeyBlockedInstances, err)
		}
	}
	if v := strings.TrimSpace(kv[domain.KeyCheckedCommunities]); v != "" {
		if err := json.Unmarshal([]byte(v), &p.CheckedCommunities); err != nil {
			return domain.DefaultPreferences(), invalid(op, path, domain.KeyCheckedCommunities, err)
		}
	}
	if v := kv[domain.KeyNSFWFilter]; v != "" {
		if f, err := domain.ParseNSFWFilter(v); err == nil {
			p.Filter = f
		}
	}
	p.Session.JWT = kv[domain.KeyJWT]
	p.Session.Instance = kv[domain.KeyUserInstance]

	p.BlockedInstances = nonNil(p.BlockedInstances)
	p.CheckedCommunities = nonNil(p.CheckedCommunities)
	return p, nil
}

func invalid(op, path, key string, err error) error {
	return &domain.OpError{
		Op:   op,
		Kind: domain.KindInvalidConfig,
		Path: path + "#" + key,
		Err:  err,
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
