// Package dataloader provides helpers for batch loading vertices by id.
//
// A batch query returns rows in storage order and skips ids that do not
// exist. Loaders need results aligned with the requested keys:
//
//	rows, err := store.findByIDs(ctx, vt, dataloader.UniqueKeys(ids))
//	ordered, errs := dataloader.OrderByKeys(ids, rows, func(r row) string { return r.vid })
package dataloader

import (
	"errors"
)

// ErrNotFound is returned when an entity is not found in a batch result.
var ErrNotFound = errors.New("dataloader: entity not found")

// KeyFunc extracts a key from an entity.
type KeyFunc[K comparable, V any] func(V) K

// OrderByKeys reorders entities to match the order of requested keys.
// The result has one slot per key; missing entities are zero values with
// ErrNotFound in the matching error slot. Repeated keys get the same entity.
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}
	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// OrderByKeysNoError is like OrderByKeys but drops the errors; missing
// entities are zero values.
func OrderByKeysNoError[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) []V {
	result, _ := OrderByKeys(keys, values, keyFn)
	return result
}

// UniqueKeys returns the keys without duplicates, in first-seen order.
func UniqueKeys[K comparable](keys []K) []K {
	seen := make(map[K]struct{}, len(keys))
	out := make([]K, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
