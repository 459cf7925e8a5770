package tags

import (
	"sort"
)

// Cluster groups near-duplicate tags by string similarity.
type Cluster struct {
	Canonical string   `json:"canonical"` // Most frequent member
	Members   []string `json:"members"`
	Merge     bool     `json:"merge"` // Proposed for merging (more than 3 members)
}

// ClusterSimilar groups tags whose edit-distance similarity exceeds the
// threshold, proposing a merge for clusters with more than 3 members.
// Counts weight the canonical pick; pass nil to weight uniformly.
func ClusterSimilar(tagNames []string, counts map[string]int, threshold float64) []Cluster {
	if threshold <= 0 {
		threshold = 0.8
	}

	assigned := make(map[string]bool)
	var clusters []Cluster

	for _, name := range tagNames {
		if assigned[name] {
			continue
		}
		cluster := Cluster{Members: []string{name}}
		assigned[name] = true

		for _, other := range tagNames {
			if assigned[other] {
				continue
			}
			if Similarity(name, other) >= threshold {
				cluster.Members = append(cluster.Members, other)
				assigned[other] = true
			}
		}

		sort.SliceStable(cluster.Members, func(i, j int) bool {
			ci, cj := counts[cluster.Members[i]], counts[cluster.Members[j]]
			if ci != cj {
				return ci > cj
			}
			return cluster.Members[i] < cluster.Members[j]
		})
		cluster.Canonical = cluster.Members[0]
		cluster.Merge = len(cluster.Members) > 3
		clusters = append(clusters, cluster)
	}
	return clusters
}

// Similarity returns 1 - normalized Levenshtein distance between two
// strings, in [0,1].
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
