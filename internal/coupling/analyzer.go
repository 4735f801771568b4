package coupling

import (
	"sort"
	"strings"

	"github.com/masmgr/hglineage/config"
	"github.com/masmgr/hglineage/internal/hg"
)

// SubRepoPair is an unordered pair of sub-repository names.
type SubRepoPair struct {
	A string
	B string
}

// NewSubRepoPair creates a pair with the lexicographically smaller name first.
func NewSubRepoPair(a, b string) SubRepoPair {
	if strings.ToLower(a) > strings.ToLower(b) {
		a, b = b, a
	}
	return SubRepoPair{A: a, B: b}
}

// SubRepoCoupling describes how often two sub-repositories move together.
type SubRepoCoupling struct {
	A                  string
	B                  string
	CoUpdateCount      int     // owner change sets moving both
	UpdateCountA       int     // owner change sets moving A
	UpdateCountB       int     // owner change sets moving B
	JaccardCoefficient float64 // |A ∩ B| / |A ∪ B|
	Confidence         float64 // P(B|A)
	Lift               float64 // P(A,B) / (P(A) × P(B))
}

// Result holds the outcome of a coupling analysis.
type Result struct {
	Couplings       []SubRepoCoupling
	TotalChangeSets int // owner change sets that moved at least one sub-repository
	TotalSubRepos   int
	TotalPairs      int
}

// Analyzer finds sub-repositories that are updated by the same change sets.
type Analyzer struct {
	options config.CouplingConfig
}

// NewAnalyzer creates a new coupling analyzer.
func NewAnalyzer(options config.CouplingConfig) *Analyzer {
	return &Analyzer{options: options}
}

// Analyze counts co-updates over the bound sub-repository changes of changeSets.
func (a *Analyzer) Analyze(changeSets []*hg.ChangeSet) Result {
	updateCounts := make(map[string]int)
	pairCounts := make(map[SubRepoPair]int)
	total := 0

	for _, cs := range changeSets {
		if len(cs.SubRepoChanges) == 0 {
			continue
		}
		total++

		names := make([]string, 0, len(cs.SubRepoChanges))
		for name := range cs.SubRepoChanges {
			updateCounts[name]++
			names = append(names, name)
		}
		sort.Strings(names)

		for i := 0; i < len(names)-1; i++ {
			for j := i + 1; j < len(names); j++ {
				pairCounts[NewSubRepoPair(names[i], names[j])]++
			}
		}
	}

	var couplings []SubRepoCoupling
	for pair, co := range pairCounts {
		if co < a.options.MinCoUpdates {
			continue
		}

		countA := updateCounts[pair.A]
		countB := updateCounts[pair.B]
		jaccard := float64(co) / float64(countA+countB-co)
		if jaccard < a.options.MinJaccardThreshold {
			continue
		}

		supportA := float64(countA) / float64(total)
		supportB := float64(countB) / float64(total)
		supportAB := float64(co) / float64(total)

		couplings = append(couplings, SubRepoCoupling{
			A:                  pair.A,
			B:                  pair.B,
			CoUpdateCount:      co,
			UpdateCountA:       countA,
			UpdateCountB:       countB,
			JaccardCoefficient: jaccard,
			Confidence:         float64(co) / float64(countA),
			Lift:               supportAB / (supportA * supportB),
		})
	}

	sort.Slice(couplings, func(i, j int) bool {
		if couplings[i].JaccardCoefficient != couplings[j].JaccardCoefficient {
			return couplings[i].JaccardCoefficient > couplings[j].JaccardCoefficient
		}
		if couplings[i].A != couplings[j].A {
			return couplings[i].A < couplings[j].A
		}
		return couplings[i].B < couplings[j].B
	})

	if a.options.TopPairs > 0 && len(couplings) > a.options.TopPairs {
		couplings = couplings[:a.options.TopPairs]
	}

	return Result{
		Couplings:       couplings,
		TotalChangeSets: total,
		TotalSubRepos:   len(updateCounts),
		TotalPairs:      len(pairCounts),
	}
}
