package rest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjoshi/otp/pkg/domain/entities"
)

const dateLayout = "2006-01-02"

// LineItemDTO is one requested item line
type LineItemDTO struct {
	ItemCode  string          `json:"item_code" binding:"required"`
	Qty       decimal.Decimal `json:"qty" binding:"required"`
	Warehouse string          `json:"warehouse,omitempty"`
}

// RulesDTO overrides the configured default business rules. All fields
// are optional; absent fields keep their defaults.
type RulesDTO struct {
	NoWeekends           *bool    `json:"no_weekends,omitempty"`
	CutoffTime           string   `json:"cutoff_time,omitempty"`
	LeadTimeBufferDays   *int     `json:"lead_time_buffer_days,omitempty"`
	FulfillmentMode      string   `json:"fulfillment_mode,omitempty"`
	NearSupplyWindowDays *int     `json:"near_supply_window_days,omitempty"`
	WarehousePriority    []string `json:"warehouse_priority,omitempty"`
}

// PromiseRequestDTO is the body of POST /v1/promise
type PromiseRequestDTO struct {
	Customer string        `json:"customer" binding:"required"`
	Items    []LineItemDTO `json:"items" binding:"required"`
	Rules    *RulesDTO     `json:"rules,omitempty"`
}

// ApplyRequestDTO is the body of POST /v1/promise/apply: compute a
// promise and write it back onto the sales order
type ApplyRequestDTO struct {
	SalesOrderID string `json:"sales_order_id" binding:"required"`
	PromiseRequestDTO
}

// SuggestRequestDTO is the body of POST /v1/procurement/suggest
type SuggestRequestDTO struct {
	PromiseRequestDTO
	Priority string `json:"priority,omitempty"`
}

// toDomain converts the DTO into a domain request, layering rule
// overrides over the supplied defaults
func (r *PromiseRequestDTO) toDomain(defaults entities.BusinessRules) (*entities.PromiseRequest, error) {
	rules := defaults
	if r.Rules != nil {
		if r.Rules.NoWeekends != nil {
			rules.SkipWeekends = *r.Rules.NoWeekends
		}
		if r.Rules.CutoffTime != "" {
			cutoff, err := entities.ParseCutoffTime(r.Rules.CutoffTime)
			if err != nil {
				return nil, &entities.ValidationError{Field: "rules.cutoff_time", Reason: err.Error()}
			}
			rules.Cutoff = cutoff
		}
		if r.Rules.LeadTimeBufferDays != nil {
			rules.LeadTimeBufferDays = *r.Rules.LeadTimeBufferDays
		}
		if r.Rules.FulfillmentMode != "" {
			mode, err := entities.ParseFulfillmentMode(r.Rules.FulfillmentMode)
			if err != nil {
				return nil, &entities.ValidationError{Field: "rules.fulfillment_mode", Reason: err.Error()}
			}
			rules.Mode = mode
		}
		if r.Rules.NearSupplyWindowDays != nil {
			rules.NearSupplyWindowDays = *r.Rules.NearSupplyWindowDays
		}
		if len(r.Rules.WarehousePriority) > 0 {
			rules.WarehousePriority = nil
			for _, wh := range r.Rules.WarehousePriority {
				rules.WarehousePriority = append(rules.WarehousePriority, entities.Warehouse(wh))
			}
		}
	}

	items := make([]entities.LineItemRequest, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, entities.LineItemRequest{
			ItemCode:  entities.ItemCode(item.ItemCode),
			Qty:       item.Qty,
			Warehouse: entities.Warehouse(item.Warehouse),
		})
	}

	return &entities.PromiseRequest{
		Customer: r.Customer,
		Items:    items,
		Rules:    rules,
	}, nil
}

// SourceDTO is one allocation source in a response
type SourceDTO struct {
	Kind          string          `json:"kind"`
	Warehouse     string          `json:"warehouse"`
	Reference     string          `json:"reference,omitempty"`
	Qty           decimal.Decimal `json:"qty"`
	AvailableDate string          `json:"available_date"`
}

// OptionDTO is a suggested alternative in a response
type OptionDTO struct {
	Type        string `json:"type"`
	ItemCode    string `json:"item_code,omitempty"`
	Warehouse   string `json:"warehouse,omitempty"`
	Reference   string `json:"reference,omitempty"`
	Description string `json:"description"`
	Impact      string `json:"impact,omitempty"`
}

// ItemResultDTO is the per-line outcome in a response
type ItemResultDTO struct {
	ItemCode      string          `json:"item_code"`
	PromiseDate   string          `json:"promise_date,omitempty"`
	Confidence    string          `json:"confidence"`
	Unfulfillable bool            `json:"unfulfillable"`
	Requested     decimal.Decimal `json:"requested"`
	Allocated     decimal.Decimal `json:"allocated"`
	Unallocated   decimal.Decimal `json:"unallocated"`
	Sources       []SourceDTO     `json:"sources"`
	Reasons       []string        `json:"reasons,omitempty"`
	Blockers      []string        `json:"blockers,omitempty"`
	Options       []OptionDTO     `json:"options,omitempty"`
}

// PromiseResponseDTO is the body returned by POST /v1/promise
type PromiseResponseDTO struct {
	Customer         string          `json:"customer"`
	PromiseDate      string          `json:"promise_date,omitempty"`
	Confidence       string          `json:"confidence"`
	Mode             string          `json:"mode"`
	FullyFulfillable bool            `json:"fully_fulfillable"`
	GeneratedAt      time.Time       `json:"generated_at"`
	Items            []ItemResultDTO `json:"items"`
}

// ApplyResponseDTO is the body returned by POST /v1/promise/apply
type ApplyResponseDTO struct {
	SalesOrderID string             `json:"sales_order_id"`
	ActionsTaken []string           `json:"actions_taken"`
	Plan         PromiseResponseDTO `json:"plan"`
}

// SuggestResponseDTO is the body returned by POST /v1/procurement/suggest
type SuggestResponseDTO struct {
	MaterialRequestID string             `json:"material_request_id,omitempty"`
	Plan              PromiseResponseDTO `json:"plan"`
}

// ErrorResponse is the uniform error body
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func planToDTO(plan *entities.PromisePlan) PromiseResponseDTO {
	items := make([]ItemResultDTO, 0, len(plan.Items))
	for _, item := range plan.Items {
		sources := make([]SourceDTO, 0, len(item.Allocation.Sources))
		for _, src := range item.Allocation.Sources {
			sources = append(sources, SourceDTO{
				Kind:          src.Kind.String(),
				Warehouse:     string(src.Warehouse),
				Reference:     src.Reference,
				Qty:           src.Qty,
				AvailableDate: formatDate(src.AvailableDate),
			})
		}

		options := make([]OptionDTO, 0, len(item.Options))
		for _, opt := range item.Options {
			options = append(options, OptionDTO{
				Type:        opt.Type,
				ItemCode:    string(opt.ItemCode),
				Warehouse:   string(opt.Warehouse),
				Reference:   opt.Reference,
				Description: opt.Description,
				Impact:      opt.Impact,
			})
		}

		items = append(items, ItemResultDTO{
			ItemCode:      string(item.ItemCode),
			PromiseDate:   formatDate(item.PromiseDate),
			Confidence:    item.Confidence.String(),
			Unfulfillable: item.Unfulfillable,
			Requested:     item.Allocation.Requested,
			Allocated:     item.Allocation.Allocated(),
			Unallocated:   item.Allocation.Unallocated,
			Sources:       sources,
			Reasons:       item.Reasons,
			Blockers:      item.Blockers,
			Options:       options,
		})
	}

	return PromiseResponseDTO{
		Customer:         plan.Customer,
		PromiseDate:      formatDate(plan.PromiseDate),
		Confidence:       plan.Confidence.String(),
		Mode:             plan.Mode.String(),
		FullyFulfillable: plan.FullyFulfillable,
		GeneratedAt:      plan.GeneratedAt,
		Items:            items,
	}
}
