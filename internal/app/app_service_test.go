package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fabric-stock/internal/ai"
	"fabric-stock/internal/app"
	"fabric-stock/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalysis struct {
	assessments []core.ReorderAssessment
	report      *core.StockHealthReport
	err         error

	gotAsOf  time.Time
	gotOrder core.ColourOrder
}

func (f *fakeAnalysis) StockHealth(ctx context.Context, order core.ColourOrder) (*core.StockHealthReport, error) {
	f.gotOrder = order
	return f.report, f.err
}

func (f *fakeAnalysis) ReorderAssessments(ctx context.Context, asOf time.Time) ([]core.ReorderAssessment, error) {
	f.gotAsOf = asOf
	return f.assessments, f.err
}

func (f *fakeAnalysis) ColourConsumption(ctx context.Context, id string, asOf time.Time) (*core.ConsumptionWindow, error) {
	f.gotAsOf = asOf
	return &core.ConsumptionWindow{FabricColourID: id, WindowDays: 30}, f.err
}

func (f *fakeAnalysis) FabricRequirements(ctx context.Context, asOf time.Time) (*core.RequirementsPlan, error) {
	f.gotAsOf = asOf
	return &core.RequirementsPlan{}, f.err
}

func (f *fakeAnalysis) Policy() core.StockPolicy { return core.DefaultStockPolicy() }

type fakeAdvisor struct {
	got []core.ReorderAssessment
}

func (f *fakeAdvisor) DraftPurchaseBrief(ctx context.Context, assessments []core.ReorderAssessment) (*ai.PurchaseBrief, error) {
	f.got = assessments
	return &ai.PurchaseBrief{Summary: "ok"}, nil
}

func newFakeAnalysis() *fakeAnalysis {
	return &fakeAnalysis{
		report: &core.StockHealthReport{},
		assessments: []core.ReorderAssessment{
			{FabricColourID: "FC1", Status: core.StatusOrderNow},
			{FabricColourID: "FC2", Status: core.StatusOrderSoon},
			{FabricColourID: "FC3", Status: core.StatusOK},
			{FabricColourID: "FC4", Status: core.StatusOK},
		},
	}
}

func TestGetReorderAssessments(t *testing.T) {
	analysis := newFakeAnalysis()
	svc := app.NewAppService(analysis, nil, nil, "")

	res, err := svc.GetReorderAssessments(context.Background(), app.ReorderRequest{
		AsOf:     "2026-03-31",
		Statuses: []string{"order now"},
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 31, 23, 59, 59, 999999000, time.UTC), analysis.gotAsOf)
	require.Len(t, res.Assessments, 1)
	assert.Equal(t, "FC1", res.Assessments[0].FabricColourID)
	assert.Equal(t, 1, res.Counts[core.StatusOrderNow])
	assert.Equal(t, 2, res.Counts[core.StatusOK])
}

func TestGetReorderAssessments_InvalidInput(t *testing.T) {
	svc := app.NewAppService(newFakeAnalysis(), nil, nil, "")
	ctx := context.Background()

	_, err := svc.GetReorderAssessments(ctx, app.ReorderRequest{AsOf: "31/03/2026"})
	assert.ErrorIs(t, err, app.ErrInvalidRequest)

	_, err = svc.GetReorderAssessments(ctx, app.ReorderRequest{Statuses: []string{"LATER"}})
	assert.ErrorIs(t, err, app.ErrInvalidRequest)
}

func TestGetStockHealth_DefaultOrder(t *testing.T) {
	analysis := newFakeAnalysis()
	svc := app.NewAppService(analysis, nil, nil, core.ColourOrderBalance)

	res, err := svc.GetStockHealth(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, core.ColourOrderBalance, res.Order)
	assert.Equal(t, core.ColourOrderBalance, analysis.gotOrder)

	_, err = svc.GetStockHealth(context.Background(), "hue")
	assert.ErrorIs(t, err, app.ErrInvalidRequest)
}

func TestGetColourConsumption(t *testing.T) {
	svc := app.NewAppService(newFakeAnalysis(), nil, nil, "")

	res, err := svc.GetColourConsumption(context.Background(), "FC1", "2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, "FC1", res.Window.FabricColourID)

	_, err = svc.GetColourConsumption(context.Background(), " ", "")
	assert.ErrorIs(t, err, app.ErrInvalidRequest)
}

func TestEvaluateReorder(t *testing.T) {
	svc := app.NewAppService(newFakeAnalysis(), nil, nil, "")
	ctx := context.Background()
	lead := 10

	res, err := svc.EvaluateReorder(ctx, app.EvaluateReorderRequest{Balance: "50", AvgDailyConsumption: "5", LeadTimeDays: &lead})
	require.NoError(t, err)
	assert.Equal(t, core.StatusOrderNow, res.Classification.Status)
	assert.True(t, res.Classification.DaysOfStock.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, int64(60), res.SuggestedOrderQty)

	moq := "100"
	res, err = svc.EvaluateReorder(ctx, app.EvaluateReorderRequest{Balance: "500", AvgDailyConsumption: "1", MinOrderQuantity: &moq})
	require.NoError(t, err)
	assert.Equal(t, core.StatusOK, res.Classification.Status)
	assert.Equal(t, 14, res.Classification.EffectiveLeadTimeDays)
	assert.Equal(t, int64(100), res.SuggestedOrderQty)

	_, err = svc.EvaluateReorder(ctx, app.EvaluateReorderRequest{Balance: "-1", AvgDailyConsumption: "1"})
	assert.ErrorIs(t, err, core.ErrInvalidBalanceRecord)
	_, err = svc.EvaluateReorder(ctx, app.EvaluateReorderRequest{Balance: "x", AvgDailyConsumption: "1"})
	assert.ErrorIs(t, err, app.ErrInvalidRequest)
	assert.NotErrorIs(t, err, core.ErrInvalidBalanceRecord)
	_, err = svc.EvaluateReorder(ctx, app.EvaluateReorderRequest{Balance: "1", AvgDailyConsumption: "-1"})
	assert.ErrorIs(t, err, app.ErrInvalidRequest)
	assert.ErrorIs(t, err, core.ErrInvalidQuantity)
	_, err = svc.EvaluateReorder(ctx, app.EvaluateReorderRequest{Balance: "1", AvgDailyConsumption: "abc"})
	assert.ErrorIs(t, err, app.ErrInvalidRequest)
	badMOQ := "lots"
	_, err = svc.EvaluateReorder(ctx, app.EvaluateReorderRequest{Balance: "1", AvgDailyConsumption: "1", MinOrderQuantity: &badMOQ})
	assert.ErrorIs(t, err, app.ErrInvalidRequest)
	negLead := -2
	_, err = svc.EvaluateReorder(ctx, app.EvaluateReorderRequest{Balance: "1", AvgDailyConsumption: "1", LeadTimeDays: &negLead})
	assert.ErrorIs(t, err, core.ErrMissingCatalogMetadata)
}

func TestDraftPurchaseBrief(t *testing.T) {
	_, err := app.NewAppService(newFakeAnalysis(), nil, nil, "").DraftPurchaseBrief(context.Background(), "")
	assert.ErrorIs(t, err, app.ErrAdvisorUnavailable)

	advisor := &fakeAdvisor{}
	res, err := app.NewAppService(newFakeAnalysis(), advisor, nil, "").DraftPurchaseBrief(context.Background(), "2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Urgent)
	require.Len(t, advisor.got, 2)
	assert.Equal(t, "FC1", advisor.got[0].FabricColourID)
	assert.Equal(t, "FC2", advisor.got[1].FabricColourID)
}

func TestAnalysisErrorsPropagate(t *testing.T) {
	analysis := newFakeAnalysis()
	analysis.err = core.ErrInvalidBalanceRecord
	svc := app.NewAppService(analysis, nil, nil, "")

	_, err := svc.GetStockHealth(context.Background(), "")
	assert.True(t, errors.Is(err, core.ErrInvalidBalanceRecord))
	_, err = svc.GetFabricRequirements(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrInvalidBalanceRecord)
}
