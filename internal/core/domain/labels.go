package domain

import "sort"

// Labels is an ordered list of distinct strings.
type Labels []string

// NewLabels drops duplicates, keeping the first occurrence of each label.
// Empty labels are rejected.
func NewLabels(in []string) (Labels, error) {
	out := make(Labels, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, l := range in {
		if l == "" {
			return nil, ErrInvalidLabel
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out, nil
}

func (l Labels) Contains(label string) bool {
	for _, x := range l {
		if x == label {
			return true
		}
	}
	return false
}

func (l Labels) ContainsAll(labels []string) bool {
	for _, x := range labels {
		if !l.Contains(x) {
			return false
		}
	}
	return true
}

func (l Labels) Clone() Labels {
	if l == nil {
		return Labels{}
	}
	out := make(Labels, len(l))
	copy(out, l)
	return out
}

// CountLabels returns, per label, the number of models carrying it.
func CountLabels(models []*RegisteredModel) map[string]int {
	counts := make(map[string]int)
	for _, m := range models {
		for _, l := range m.Labels {
			counts[l]++
		}
	}
	return counts
}

// OrderLabelCounts returns the labels of counts with the most used first.
// Ties are in byte-wise ascending order.
func OrderLabelCounts(counts map[string]int) []string {
	out := make([]string, 0, len(counts))
	for l := range counts {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}
