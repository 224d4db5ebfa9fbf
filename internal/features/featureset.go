package features

import (
	"fmt"
	"sort"
)

// FeatureSet accumulates named metrics across extractor outputs. Keys are
// globally unique across extractors: writing a key that already holds a
// different value is a KeyConflictError, never a silent overwrite. Writing an
// identical value is a tolerated pass-through (extractors share a few
// identically-computed fields such as gross_margin).
type FeatureSet struct {
	nums   map[string]float64
	labels map[string]string
}

type KeyConflictError struct {
	Key      string
	Existing string
	Incoming string
}

func (e *KeyConflictError) Error() string {
	return fmt.Sprintf("feature key conflict on %q: existing=%s incoming=%s", e.Key, e.Existing, e.Incoming)
}

func NewFeatureSet() *FeatureSet {
	return &FeatureSet{nums: map[string]float64{}, labels: map[string]string{}}
}

func (f *FeatureSet) SetNum(key string, v float64) error {
	if existing, ok := f.nums[key]; ok && existing != v {
		return &KeyConflictError{Key: key, Existing: fmt.Sprintf("%g", existing), Incoming: fmt.Sprintf("%g", v)}
	}
	f.nums[key] = v
	return nil
}

func (f *FeatureSet) SetLabel(key, v string) error {
	if existing, ok := f.labels[key]; ok && existing != v {
		return &KeyConflictError{Key: key, Existing: existing, Incoming: v}
	}
	f.labels[key] = v
	return nil
}

// Num returns the metric value, or 0 when absent.
func (f *FeatureSet) Num(key string) float64 { return f.nums[key] }

// NumOr returns the metric value, or def when the key was never written.
func (f *FeatureSet) NumOr(key string, def float64) float64 {
	if v, ok := f.nums[key]; ok {
		return v
	}
	return def
}

func (f *FeatureSet) Has(key string) bool {
	_, ok := f.nums[key]
	return ok
}

func (f *FeatureSet) Label(key string) string { return f.labels[key] }

// Merge folds other into f, enforcing the same conflict policy as SetNum.
func (f *FeatureSet) Merge(other *FeatureSet) error {
	if other == nil {
		return nil
	}
	for _, k := range other.Keys() {
		if err := f.SetNum(k, other.nums[k]); err != nil {
			return err
		}
	}
	for k, v := range other.labels {
		if err := f.SetLabel(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns the numeric metric names in sorted order.
func (f *FeatureSet) Keys() []string {
	keys := make([]string, 0, len(f.nums))
	for k := range f.nums {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot copies the numeric metrics into a plain map for serialization.
func (f *FeatureSet) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(f.nums))
	for k, v := range f.nums {
		out[k] = v
	}
	return out
}

// Labels copies the non-numeric pass-through fields.
func (f *FeatureSet) Labels() map[string]string {
	out := make(map[string]string, len(f.labels))
	for k, v := range f.labels {
		out[k] = v
	}
	return out
}
