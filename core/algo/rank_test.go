package algo

import (
	"testing"

	"github.com/sentinelhq/sentinel/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func portfolio() []schema.DealRisk {
	return []schema.DealRisk{
		{DealID: "D-1", DealName: "Acme Renewal", DealValue: 245000, RevenueAtRisk: 215600, OverallRiskScore: 88, RiskLevel: schema.CriticalRisk, DealStage: schema.NegotiationStage, RepName: "Sarah Chen", BehavioralRiskIndicators: []string{"Champion went silent"}},
		{DealID: "D-2", DealName: "Globex Expansion", DealValue: 128000, RevenueAtRisk: 23040, OverallRiskScore: 18, RiskLevel: schema.LowRisk, DealStage: schema.ProposalStage, RepName: "Marcus Webb"},
		{DealID: "D-3", DealName: "Initech Pilot", DealValue: 56000, RevenueAtRisk: 33600, OverallRiskScore: 61, RiskLevel: schema.HighRisk, DealStage: schema.ProposalStage, StructuralRiskIndicators: []string{"No economic buyer"}},
		{DealID: "D-4", DealName: "Umbrella Platform", DealValue: 410000, RevenueAtRisk: 98400, OverallRiskScore: 42, RiskLevel: schema.ModerateRisk, DealStage: schema.Stage("legal_review"), RepName: "Sarah Chen"},
	}
}

func ids(deals []schema.DealRisk) []string {
	out := make([]string, len(deals))
	for i, d := range deals {
		out[i] = d.DealID
	}
	return out
}

func TestRankByRiskDescending(t *testing.T) {
	deals := portfolio()
	assert.Equal(t, []string{"D-1", "D-3", "D-4", "D-2"}, ids(RankByRiskDescending(deals)))
	assert.Equal(t, []string{"D-1", "D-2", "D-3", "D-4"}, ids(deals), "input must not be reordered")
}

func TestRankByRiskDescendingIsStable(t *testing.T) {
	deals := []schema.DealRisk{
		{DealID: "X", OverallRiskScore: 50},
		{DealID: "Y", OverallRiskScore: 50},
	}
	assert.Equal(t, []string{"X", "Y"}, ids(RankByRiskDescending(deals)))
	assert.Equal(t, []string{"X", "Y"}, ids(RankByRiskAscending(deals)))
}

func TestRankByRevenueAtRiskDescending(t *testing.T) {
	assert.Equal(t, []string{"D-1", "D-4", "D-3", "D-2"}, ids(RankByRevenueAtRiskDescending(portfolio())))
}

func TestSortDeals(t *testing.T) {
	tests := []struct {
		mode schema.SortMode
		want []string
	}{
		{schema.RiskDescSort, []string{"D-1", "D-3", "D-4", "D-2"}},
		{schema.RiskAscSort, []string{"D-2", "D-4", "D-3", "D-1"}},
		{schema.ValueDescSort, []string{"D-4", "D-1", "D-2", "D-3"}},
		{schema.ValueAscSort, []string{"D-3", "D-2", "D-1", "D-4"}},
		{schema.AtRiskDescSort, []string{"D-1", "D-4", "D-3", "D-2"}},
		{schema.SortMode("bogus"), []string{"D-1", "D-3", "D-4", "D-2"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(SortDeals(portfolio(), tt.mode)))
		})
	}
}

func TestExtremesOnEmptyInput(t *testing.T) {
	_, ok := HighestRiskDeal(nil)
	assert.False(t, ok)
	_, ok = LowestRiskDeal([]schema.DealRisk{})
	assert.False(t, ok)

	ex := FindExtremes(nil)
	assert.Nil(t, ex.HighestRisk)
	assert.Nil(t, ex.LowestRisk)
	assert.Nil(t, ex.BiggestRevenueAtRisk)
	assert.Nil(t, ex.LargestDeal)
}

func TestFindExtremes(t *testing.T) {
	ex := FindExtremes(portfolio())
	require.NotNil(t, ex.HighestRisk)
	assert.Equal(t, "D-1", ex.HighestRisk.DealID)
	assert.Equal(t, "D-2", ex.LowestRisk.DealID)
	assert.Equal(t, "D-1", ex.BiggestRevenueAtRisk.DealID)
	assert.Equal(t, "D-4", ex.LargestDeal.DealID)
}

func TestHighestAndLowestTiesKeepFirst(t *testing.T) {
	deals := []schema.DealRisk{
		{DealID: "A", OverallRiskScore: 70},
		{DealID: "B", OverallRiskScore: 70},
		{DealID: "C", OverallRiskScore: 10},
		{DealID: "D", OverallRiskScore: 10},
	}
	hi, ok := HighestRiskDeal(deals)
	require.True(t, ok)
	assert.Equal(t, "A", hi.DealID)
	lo, ok := LowestRiskDeal(deals)
	require.True(t, ok)
	assert.Equal(t, "C", lo.DealID)
}

func TestFilterDeals(t *testing.T) {
	tests := []struct {
		name   string
		filter schema.DealFilter
		want   []string
	}{
		{"empty filter keeps all", schema.DealFilter{}, []string{"D-1", "D-2", "D-3", "D-4"}},
		{"search by name is case-insensitive", schema.DealFilter{Search: "acme"}, []string{"D-1"}},
		{"search by id", schema.DealFilter{Search: "d-3"}, []string{"D-3"}},
		{"stage label", schema.DealFilter{Stage: "Proposal"}, []string{"D-2", "D-3"}},
		{"unknown stage passes through", schema.DealFilter{Stage: "legal_review"}, []string{"D-4"}},
		{"rep", schema.DealFilter{Rep: "Sarah Chen"}, []string{"D-1", "D-4"}},
		{"missing rep matches Unknown", schema.DealFilter{Rep: schema.UnknownRep}, []string{"D-3"}},
		{"level", schema.DealFilter{Level: schema.HighRisk}, []string{"D-3"}},
		{"criteria combine", schema.DealFilter{Rep: "Sarah Chen", Level: schema.ModerateRisk}, []string{"D-4"}},
		{"no match", schema.DealFilter{Search: "zzz"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterDeals(portfolio(), tt.filter)))
		})
	}
}

func TestFindDeal(t *testing.T) {
	d, ok := FindDeal(portfolio(), "D-3")
	require.True(t, ok)
	assert.Equal(t, "Initech Pilot", d.DealName)

	_, ok = FindDeal(portfolio(), "missing")
	assert.False(t, ok)
}

func TestAlerts(t *testing.T) {
	alerts := Alerts(portfolio())
	require.Len(t, alerts, 2)

	assert.Equal(t, "D-1", alerts[0].DealID)
	assert.Equal(t, "Champion went silent", alerts[0].TopIndicator)
	assert.Equal(t, schema.CriticalRisk, alerts[0].RiskLevel)

	assert.Equal(t, "D-3", alerts[1].DealID)
	assert.Equal(t, schema.UnknownRep, alerts[1].Rep)
	assert.Equal(t, "No economic buyer", alerts[1].TopIndicator)
}

func TestAlertsEmpty(t *testing.T) {
	assert.Empty(t, Alerts(nil))
}

func TestLimit(t *testing.T) {
	items := []int{1, 2, 3, 4}
	assert.Equal(t, []int{1, 2}, Limit(items, 2))
	assert.Equal(t, items, Limit(items, 10))
	assert.Equal(t, items, Limit(items, 0))
	assert.Equal(t, items, Limit(items, -1))
}
