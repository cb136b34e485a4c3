package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fabric-stock/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// UnassignedParty groups fabrics whose catalog entry names no supplier.
const UnassignedParty = "Unassigned"

// ErrBriefMismatch is returned when a generated brief does not agree with the
// computed reorder assessments.
var ErrBriefMismatch = errors.New("purchase brief does not match reorder assessments")

// PurchaseBrief is the structured purchasing summary produced by the model.
type PurchaseBrief struct {
	Summary string          `json:"summary" jsonschema_description:"Two or three sentences for the purchasing team"`
	Orders  []SupplierOrder `json:"orders" jsonschema_description:"One entry per supplying party"`
}

type SupplierOrder struct {
	PartyName string      `json:"party_name" jsonschema_description:"Supplier name exactly as given, or Unassigned"`
	Rationale string      `json:"rationale" jsonschema_description:"Why these fabrics should be ordered now"`
	Lines     []BriefLine `json:"lines"`
}

type BriefLine struct {
	FabricColourID string             `json:"fabric_colour_id"`
	FabricName     string             `json:"fabric_name"`
	ColourName     string             `json:"colour_name"`
	Quantity       int64              `json:"quantity" jsonschema_description:"Suggested order quantity exactly as given"`
	Unit           core.Unit          `json:"unit"`
	Status         core.ReorderStatus `json:"status"`
}

// PurchaseAdvisor drafts a purchase brief from reorder assessments.
type PurchaseAdvisor interface {
	DraftPurchaseBrief(ctx context.Context, assessments []core.ReorderAssessment) (*PurchaseBrief, error)
}

// completer runs one structured completion and returns the raw JSON text.
type completer interface {
	complete(ctx context.Context, prompt string, schema map[string]any) (string, error)
}

type Advisor struct {
	llm completer
}

// NewAdvisor constructs an Advisor backed by the OpenAI Responses API.
func NewAdvisor(apiKey string) *Advisor {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Advisor{llm: &responsesCompleter{client: &client}}
}

// DraftPurchaseBrief asks the model to group the ORDER NOW and ORDER SOON
// assessments by supplier. The returned brief is checked line by line against
// the assessments before it is handed back.
func (a *Advisor) DraftPurchaseBrief(ctx context.Context, assessments []core.ReorderAssessment) (*PurchaseBrief, error) {
	urgent := core.FilterByStatus(assessments, core.StatusOrderNow, core.StatusOrderSoon)
	if len(urgent) == 0 {
		return &PurchaseBrief{Summary: "No fabric colour needs reordering.", Orders: []SupplierOrder{}}, nil
	}

	schemaMap, err := briefSchema()
	if err != nil {
		return nil, err
	}

	content, err := a.llm.complete(ctx, buildBriefPrompt(urgent), schemaMap)
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var brief PurchaseBrief
	if err := json.Unmarshal([]byte(content), &brief); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	if err := ValidateBrief(&brief, urgent); err != nil {
		return nil, fmt.Errorf("brief validation failed: %w", err)
	}
	return &brief, nil
}

func buildBriefPrompt(urgent []core.ReorderAssessment) string {
	var sb strings.Builder
	for _, a := range urgent {
		days := "unknown"
		if a.DaysOfStock != nil {
			days = a.DaysOfStock.StringFixed(1)
		}
		fmt.Fprintf(&sb, "- id=%s | %s / %s | party=%s | status=%s | balance=%s %s | avg/day=%s | days of stock=%s | lead time=%d | suggested qty=%d\n",
			a.FabricColourID, a.FabricName, a.ColourName, partyOf(a), a.Status,
			a.CurrentBalance.StringFixed(2), a.Unit, a.AvgDailyConsumption.StringFixed(2),
			days, a.EffectiveLeadTimeDays, a.SuggestedOrderQty)
	}

	return fmt.Sprintf(`You are the purchasing assistant of a garment manufacturer.
Group the fabric colours below into one purchase order per supplying party.
Rules:
1. Use ONLY the fabric colours listed. Include every one of them exactly once.
2. Copy fabric_colour_id, quantity, unit and status exactly as given. Do not change quantities.
3. Use the party name exactly as given. Colours with party=%s go under %q.
4. Give each supplier a one-sentence rationale mentioning the most urgent colour.
5. Keep the summary to two or three sentences.

Fabric colours needing reorder:
%s`, UnassignedParty, UnassignedParty, sb.String())
}

// ValidateBrief checks that brief lists every urgent assessment exactly once,
// under its own supplier, with the computed quantity and status.
func ValidateBrief(brief *PurchaseBrief, urgent []core.ReorderAssessment) error {
	want := make(map[string]core.ReorderAssessment, len(urgent))
	for _, a := range urgent {
		want[a.FabricColourID] = a
	}

	seen := make(map[string]bool, len(urgent))
	for _, order := range brief.Orders {
		for _, line := range order.Lines {
			a, ok := want[line.FabricColourID]
			if !ok {
				return fmt.Errorf("%w: unknown fabric colour %q", ErrBriefMismatch, line.FabricColourID)
			}
			if seen[line.FabricColourID] {
				return fmt.Errorf("%w: fabric colour %s listed twice", ErrBriefMismatch, line.FabricColourID)
			}
			seen[line.FabricColourID] = true

			if line.Quantity != a.SuggestedOrderQty {
				return fmt.Errorf("%w: fabric colour %s quantity %d, computed %d", ErrBriefMismatch, line.FabricColourID, line.Quantity, a.SuggestedOrderQty)
			}
			if line.Status != a.Status {
				return fmt.Errorf("%w: fabric colour %s status %q, computed %q", ErrBriefMismatch, line.FabricColourID, line.Status, a.Status)
			}
			if order.PartyName != partyOf(a) {
				return fmt.Errorf("%w: fabric colour %s placed under %q, supplier is %q", ErrBriefMismatch, line.FabricColourID, order.PartyName, partyOf(a))
			}
		}
	}
	for id := range want {
		if !seen[id] {
			return fmt.Errorf("%w: fabric colour %s missing from brief", ErrBriefMismatch, id)
		}
	}
	return nil
}

func partyOf(a core.ReorderAssessment) string {
	if a.PartyName == nil || *a.PartyName == "" {
		return UnassignedParty
	}
	return *a.PartyName
}

func briefSchema() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaJSON, err := json.Marshal(reflector.Reflect(&PurchaseBrief{}))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	return schemaMap, nil
}

// ── OpenAI Responses API ─────────────────────────────────────────────────────

type responsesCompleter struct {
	client *openai.Client
}

func (c *responsesCompleter) complete(ctx context.Context, prompt string, schema map[string]any) (string, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "fabric_purchase_brief",
					Strict:      param.NewOpt(true),
					Schema:      schema,
					Description: param.NewOpt("Fabric reorder suggestions grouped by supplier"),
				},
			},
		},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai responses error: %w", err)
	}
	return resp.OutputText(), nil
}
