package scenario

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tranche/internal/model"
)

func structuredDeal(cnlHigh float64) *model.NewIssueDeal {
	return &model.NewIssueDeal{
		ID:              "deal-1",
		DealName:        "Acme Auto Receivables Trust 2024-1",
		ExpectedCNLLow:  cnlHigh - 1,
		ExpectedCNLHigh: cnlHigh,
		InitialOC:       2,
		ReserveAccount:  0.5,
		NoteClasses: []model.NoteClass{
			{ClassID: "A", OriginalBalance: 800_000_000, SubordinationLevel: 1},
			{ClassID: "B", OriginalBalance: 100_000_000, SubordinationLevel: 2},
			{ClassID: "C", OriginalBalance: 100_000_000, SubordinationLevel: 3},
		},
	}
}

func TestCreditEnhancement(t *testing.T) {
	tests := []struct {
		deal *model.NewIssueDeal
		name string
		want float64
	}{
		{name: "subordination plus oc and reserve", deal: structuredDeal(5), want: 22.5},
		{
			name: "advance rate fallback",
			deal: &model.NewIssueDeal{ClassAAdvanceRate: 85, ReserveAccount: 1},
			want: 16,
		},
		{
			name: "senior classes only use advance rate",
			deal: &model.NewIssueDeal{
				ClassAAdvanceRate: 90,
				NoteClasses:       []model.NoteClass{{ClassID: "A-1", OriginalBalance: 10, SubordinationLevel: 1}},
			},
			want: 10,
		},
		{name: "nothing known", deal: &model.NewIssueDeal{}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CreditEnhancement(tt.deal), 1e-9)
		})
	}
}

func TestBaseCNL(t *testing.T) {
	assert.InDelta(t, 1.5, BaseCNL(&model.NewIssueDeal{ExpectedCNLLow: 1.25, ExpectedCNLHigh: 1.5}), 1e-9)
	assert.InDelta(t, 1.25, BaseCNL(&model.NewIssueDeal{ExpectedCNLLow: 1.25}), 1e-9)
}

func TestStressTest(t *testing.T) {
	t.Run("all scenarios pass", func(t *testing.T) {
		res, err := StressTest(structuredDeal(5), nil)
		require.NoError(t, err)

		require.Len(t, res.Outcomes, 3)
		assert.InDelta(t, 4.5, res.BreakevenMultiple, 1e-9)
		for _, o := range res.Outcomes {
			assert.True(t, o.Pass, o.Name)
		}
		assert.InDelta(t, 17.5, res.Outcomes[2].StressedCNL, 1e-9)
		assert.InDelta(t, 22.5/17.5, res.Outcomes[2].Coverage, 1e-9)
		assert.Contains(t, res.Reasoning, "covers every scenario")
	})

	t.Run("severe scenario fails", func(t *testing.T) {
		res, err := StressTest(structuredDeal(7), nil)
		require.NoError(t, err)

		assert.True(t, res.Outcomes[0].Pass)
		assert.True(t, res.Outcomes[1].Pass)
		assert.False(t, res.Outcomes[2].Pass)
		assert.Less(t, res.Outcomes[2].Coverage, 1.0)
		assert.Contains(t, res.Reasoning, "severe")
	})

	t.Run("custom stresses", func(t *testing.T) {
		res, err := StressTest(structuredDeal(5), []Stress{{Name: "meltdown", Multiplier: 10}})
		require.NoError(t, err)
		require.Len(t, res.Outcomes, 1)
		assert.False(t, res.Outcomes[0].Pass)
	})
}

func TestStressTestInsufficientData(t *testing.T) {
	tests := []struct {
		deal *model.NewIssueDeal
		name string
	}{
		{name: "nil deal", deal: nil},
		{name: "no expected loss", deal: &model.NewIssueDeal{ClassAAdvanceRate: 80}},
		{name: "no enhancement", deal: &model.NewIssueDeal{ExpectedCNLHigh: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := StressTest(tt.deal, nil)
			assert.ErrorIs(t, err, ErrInsufficientData)
		})
	}
}

func TestSimulateDeterministic(t *testing.T) {
	ctx := context.Background()
	opts := SimulationOptions{Simulations: 5000, Seed: 42}

	a, err := Simulate(ctx, structuredDeal(5), opts)
	require.NoError(t, err)
	b, err := Simulate(ctx, structuredDeal(5), opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Simulate(ctx, structuredDeal(5), SimulationOptions{Simulations: 5000, Seed: 7})
	require.NoError(t, err)
	assert.NotEqual(t, a.Mean, c.Mean)
}

func TestSimulateDistribution(t *testing.T) {
	res, err := Simulate(context.Background(), structuredDeal(5), SimulationOptions{Simulations: 20000, Seed: 1})
	require.NoError(t, err)

	assert.Equal(t, 20000, res.Simulations)
	assert.InDelta(t, 5.0, res.Mean, 0.25)
	assert.Greater(t, res.StdDev, 0.0)
	assert.LessOrEqual(t, res.P50, res.P95)
	assert.LessOrEqual(t, res.P95, res.P99)
	assert.LessOrEqual(t, res.P99, res.Max)
	assert.Less(t, res.P50, res.Mean)
	assert.InDelta(t, 22.5, res.CreditEnhancement, 1e-9)
	assert.Less(t, res.BreachProbability, 0.05)
}

func TestSimulateBreach(t *testing.T) {
	deal := &model.NewIssueDeal{ExpectedCNLHigh: 5, ReserveAccount: 0.5}

	res, err := Simulate(context.Background(), deal, SimulationOptions{Simulations: 2000, Seed: 3})
	require.NoError(t, err)
	assert.Greater(t, res.BreachProbability, 0.99)
}

func TestSimulateDefaults(t *testing.T) {
	res, err := Simulate(context.Background(), structuredDeal(5), SimulationOptions{})
	require.NoError(t, err)
	assert.Equal(t, DefaultSimulations, res.Simulations)
}

func TestSimulateErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Simulate(ctx, structuredDeal(5), SimulationOptions{Simulations: 10})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = Simulate(context.Background(), &model.NewIssueDeal{}, SimulationOptions{})
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = Simulate(nil, structuredDeal(5), SimulationOptions{}) //nolint:staticcheck
	assert.Error(t, err)
}
