package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/NTTDATA-DACH/NTT-CSP-Compare/internal/model"
)

// DefaultDomain is the bucket for pairs without a domain assignment.
const DefaultDomain = "Uncategorized"

// Averages holds the mean scores for one group of pairs.
type Averages struct {
	// Technical is the mean technical score.
	Technical float64 `json:"technical"`

	// CostEfficiency is the mean cost-efficiency score.
	CostEfficiency float64 `json:"cost_efficiency"`

	// Combined is the mean of all technical and cost-efficiency scores
	// taken together.
	Combined float64 `json:"combined"`

	// Pairs is the number of pairs in the group.
	Pairs int `json:"pairs"`
}

// Summary is the aggregated view of one run's results.
type Summary struct {
	// Groups maps domain name to that domain's pairs, in input order.
	Groups map[string][]model.PairResult `json:"groups"`

	// DomainAverages maps domain name to that domain's mean scores.
	DomainAverages map[string]Averages `json:"domain_averages"`

	// Overall holds run-wide averages across all pairs.
	Overall Averages `json:"overall"`
}

// Domains returns the group names in sorted order for stable rendering.
func (s Summary) Domains() []string {
	domains := make([]string, 0, len(s.Groups))
	for d := range s.Groups {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

// Aggregate groups pairs by domain and computes per-domain and overall
// score averages. Pairs without a domain land in DefaultDomain; pairs
// whose payloads carry no score contribute nothing to the averages.
func Aggregate(pairs []model.PairResult) Summary {
	groups := make(map[string][]model.PairResult)
	for _, pair := range pairs {
		domain := pair.Map.Domain
		if domain == "" {
			domain = DefaultDomain
		}
		groups[domain] = append(groups[domain], pair)
	}

	domainAverages := make(map[string]Averages, len(groups))
	for domain, group := range groups {
		domainAverages[domain] = averagesOf(group)
	}

	return Summary{
		Groups:         groups,
		DomainAverages: domainAverages,
		Overall:        averagesOf(pairs),
	}
}

// averagesOf computes the mean scores for one group of pairs.
// Empty groups and score-less payloads yield zero averages rather than
// a division by zero.
func averagesOf(group []model.PairResult) Averages {
	var techScores, costScores []decimal.Decimal
	for _, pair := range group {
		if score, ok := pair.Result.TechnicalScore(); ok {
			techScores = append(techScores, decimal.NewFromFloat(score))
		}
		if score, ok := pair.Result.CostEfficiencyScore(); ok {
			costScores = append(costScores, decimal.NewFromFloat(score))
		}
	}

	return Averages{
		Technical:      mean(techScores),
		CostEfficiency: mean(costScores),
		Combined:       mean(append(append([]decimal.Decimal{}, techScores...), costScores...)),
		Pairs:          len(group),
	}
}

// mean returns the average of scores rounded to two decimals, or 0 for
// an empty slice.
func mean(scores []decimal.Decimal) float64 {
	if len(scores) == 0 {
		return 0
	}
	avg := decimal.Avg(scores[0], scores[1:]...)
	f, _ := avg.Round(2).Float64()
	return f
}
