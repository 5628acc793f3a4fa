package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sjoshi/otp/pkg/domain/entities"
)

const dateLayout = "2006-01-02"

// Render writes a promise plan to w in the requested format
func Render(w io.Writer, plan *entities.PromisePlan, format string) error {
	switch format {
	case "text", "":
		return renderText(w, plan)
	case "json":
		return renderJSON(w, plan)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func renderText(w io.Writer, plan *entities.PromisePlan) error {
	fmt.Fprintf(w, "Order Promise for %s\n", plan.Customer)
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", 18+len(plan.Customer)))

	if plan.PromiseDate.IsZero() {
		fmt.Fprintf(w, "Promise Date: none (order cannot be fulfilled)\n")
	} else {
		fmt.Fprintf(w, "Promise Date: %s\n", plan.PromiseDate.Format(dateLayout))
	}
	fmt.Fprintf(w, "Confidence:   %s\n", plan.Confidence)
	fmt.Fprintf(w, "Mode:         %s\n\n", plan.Mode)

	fmt.Fprintf(w, "%-15s %-12s %-12s %-10s %-10s\n",
		"Item", "Promise", "Confidence", "Requested", "Short")
	fmt.Fprintf(w, "%-15s %-12s %-12s %-10s %-10s\n",
		"---------------", "------------", "------------", "----------", "----------")

	for _, item := range plan.Items {
		promise := "-"
		if !item.PromiseDate.IsZero() {
			promise = item.PromiseDate.Format(dateLayout)
		}
		fmt.Fprintf(w, "%-15s %-12s %-12s %-10s %-10s\n",
			item.ItemCode,
			promise,
			item.Confidence,
			item.Allocation.Requested.String(),
			item.Allocation.Unallocated.String())
	}
	fmt.Fprintln(w)

	for _, item := range plan.Items {
		if len(item.Reasons) == 0 && len(item.Blockers) == 0 && len(item.Options) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", item.ItemCode)
		for _, reason := range item.Reasons {
			fmt.Fprintf(w, "  + %s\n", reason)
		}
		for _, blocker := range item.Blockers {
			fmt.Fprintf(w, "  ! %s\n", blocker)
		}
		for _, opt := range item.Options {
			fmt.Fprintf(w, "  ? %s\n", opt.Description)
		}
	}
	return nil
}

type jsonSource struct {
	Kind          string `json:"kind"`
	Warehouse     string `json:"warehouse"`
	Reference     string `json:"reference,omitempty"`
	Qty           string `json:"qty"`
	AvailableDate string `json:"available_date"`
}

type jsonItem struct {
	ItemCode      string       `json:"item_code"`
	PromiseDate   string       `json:"promise_date,omitempty"`
	Confidence    string       `json:"confidence"`
	Unfulfillable bool         `json:"unfulfillable"`
	Requested     string       `json:"requested"`
	Unallocated   string       `json:"unallocated"`
	Sources       []jsonSource `json:"sources"`
	Reasons       []string     `json:"reasons,omitempty"`
	Blockers      []string     `json:"blockers,omitempty"`
}

type jsonPlan struct {
	Customer         string     `json:"customer"`
	PromiseDate      string     `json:"promise_date,omitempty"`
	Confidence       string     `json:"confidence"`
	Mode             string     `json:"mode"`
	FullyFulfillable bool       `json:"fully_fulfillable"`
	Items            []jsonItem `json:"items"`
}

func renderJSON(w io.Writer, plan *entities.PromisePlan) error {
	out := jsonPlan{
		Customer:         plan.Customer,
		Confidence:       plan.Confidence.String(),
		Mode:             plan.Mode.String(),
		FullyFulfillable: plan.FullyFulfillable,
	}
	if !plan.PromiseDate.IsZero() {
		out.PromiseDate = plan.PromiseDate.Format(dateLayout)
	}

	for _, item := range plan.Items {
		ji := jsonItem{
			ItemCode:      string(item.ItemCode),
			Confidence:    item.Confidence.String(),
			Unfulfillable: item.Unfulfillable,
			Requested:     item.Allocation.Requested.String(),
			Unallocated:   item.Allocation.Unallocated.String(),
			Reasons:       item.Reasons,
			Blockers:      item.Blockers,
		}
		if !item.PromiseDate.IsZero() {
			ji.PromiseDate = item.PromiseDate.Format(dateLayout)
		}
		for _, src := range item.Allocation.Sources {
			ji.Sources = append(ji.Sources, jsonSource{
				Kind:          src.Kind.String(),
				Warehouse:     string(src.Warehouse),
				Reference:     src.Reference,
				Qty:           src.Qty.String(),
				AvailableDate: src.AvailableDate.Format(dateLayout),
			})
		}
		out.Items = append(out.Items, ji)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
