package ai

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"fabric-stock/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	reply  string
	err    error
	prompt string
	schema map[string]any
	calls  int
}

func (s *stubCompleter) complete(ctx context.Context, prompt string, schema map[string]any) (string, error) {
	s.calls++
	s.prompt, s.schema = prompt, schema
	return s.reply, s.err
}

func assessments() []core.ReorderAssessment {
	mills := "Arvind Mills"
	days := decimal.NewFromInt(10)
	return []core.ReorderAssessment{
		{FabricColourID: "FC1", FabricName: "Poplin", ColourName: "Navy", Unit: core.UnitMeter,
			DaysOfStock: &days, EffectiveLeadTimeDays: 10, SuggestedOrderQty: 60, Status: core.StatusOrderNow, PartyName: &mills},
		{FabricColourID: "FC3", FabricName: "Jersey", ColourName: "Black", Unit: core.UnitKG,
			EffectiveLeadTimeDays: 14, SuggestedOrderQty: 25, Status: core.StatusOrderSoon},
		{FabricColourID: "FC2", FabricName: "Poplin", ColourName: "White", Unit: core.UnitMeter,
			SuggestedOrderQty: 60, Status: core.StatusOK, PartyName: &mills},
	}
}

func goodBrief() PurchaseBrief {
	return PurchaseBrief{
		Summary: "Navy poplin is at its lead time.",
		Orders: []SupplierOrder{
			{PartyName: "Arvind Mills", Rationale: "Navy runs out in 10 days.", Lines: []BriefLine{
				{FabricColourID: "FC1", FabricName: "Poplin", ColourName: "Navy", Quantity: 60, Unit: core.UnitMeter, Status: core.StatusOrderNow},
			}},
			{PartyName: UnassignedParty, Rationale: "Black jersey is in the soon band.", Lines: []BriefLine{
				{FabricColourID: "FC3", FabricName: "Jersey", ColourName: "Black", Quantity: 25, Unit: core.UnitKG, Status: core.StatusOrderSoon},
			}},
		},
	}
}

func TestDraftPurchaseBrief(t *testing.T) {
	reply, err := json.Marshal(goodBrief())
	require.NoError(t, err)
	llm := &stubCompleter{reply: string(reply)}
	advisor := &Advisor{llm: llm}

	brief, err := advisor.DraftPurchaseBrief(context.Background(), assessments())
	require.NoError(t, err)
	assert.Len(t, brief.Orders, 2)

	assert.Contains(t, llm.prompt, "id=FC1")
	assert.Contains(t, llm.prompt, "party=Unassigned")
	assert.NotContains(t, llm.prompt, "id=FC2", "OK colours are not sent")
	assert.Equal(t, "object", llm.schema["type"])
	assert.Equal(t, false, llm.schema["additionalProperties"])
}

func TestDraftPurchaseBrief_NothingUrgent(t *testing.T) {
	llm := &stubCompleter{}
	advisor := &Advisor{llm: llm}

	brief, err := advisor.DraftPurchaseBrief(context.Background(), assessments()[2:])
	require.NoError(t, err)
	assert.Empty(t, brief.Orders)
	assert.Zero(t, llm.calls)
}

func TestDraftPurchaseBrief_CompletionErrors(t *testing.T) {
	boom := errors.New("rate limited")
	_, err := (&Advisor{llm: &stubCompleter{err: boom}}).DraftPurchaseBrief(context.Background(), assessments())
	assert.ErrorIs(t, err, boom)

	_, err = (&Advisor{llm: &stubCompleter{reply: ""}}).DraftPurchaseBrief(context.Background(), assessments())
	assert.Error(t, err)

	_, err = (&Advisor{llm: &stubCompleter{reply: "{not json"}}).DraftPurchaseBrief(context.Background(), assessments())
	assert.Error(t, err)
}

func TestValidateBrief(t *testing.T) {
	urgent := core.FilterByStatus(assessments(), core.StatusOrderNow, core.StatusOrderSoon)

	tests := []struct {
		name   string
		mutate func(b *PurchaseBrief)
	}{
		{"changed quantity", func(b *PurchaseBrief) { b.Orders[0].Lines[0].Quantity = 100 }},
		{"invented colour", func(b *PurchaseBrief) { b.Orders[0].Lines[0].FabricColourID = "FC99" }},
		{"wrong status", func(b *PurchaseBrief) { b.Orders[1].Lines[0].Status = core.StatusOrderNow }},
		{"wrong supplier", func(b *PurchaseBrief) { b.Orders[1].PartyName = "Arvind Mills" }},
		{"missing colour", func(b *PurchaseBrief) { b.Orders = b.Orders[:1] }},
		{"duplicate colour", func(b *PurchaseBrief) {
			b.Orders[0].Lines = append(b.Orders[0].Lines, b.Orders[0].Lines[0])
		}},
	}

	good := goodBrief()
	require.NoError(t, ValidateBrief(&good, urgent))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := goodBrief()
			tt.mutate(&b)
			assert.ErrorIs(t, ValidateBrief(&b, urgent), ErrBriefMismatch)
		})
	}
}
