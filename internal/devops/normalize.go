package devops

import (
	"fmt"

	"github.com/alexanderramin/releaseplan/internal/domain"
)

// Remote field names read by the normalizer.
const (
	FieldTitle     = "System.Title"
	FieldStartDate = "Microsoft.VSTS.Scheduling.StartDate"
	FieldEndDate   = "Microsoft.VSTS.Scheduling.FinishDate"

	attrStartDate = "startDate"
	attrEndDate   = "finishDate"
)

// RawWorkItem is a work item as returned by the batch lookup.
type RawWorkItem struct {
	ID     int            `json:"id"`
	Fields map[string]any `json:"fields"`
}

// RawIteration is an iteration as returned by the team settings listing.
type RawIteration struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Path       string         `json:"path"`
	Attributes map[string]any `json:"attributes"`
}

// NormalizeWorkItem maps a raw work item to the fixed record shape.
// Missing fields become empty strings.
func NormalizeWorkItem(raw RawWorkItem) domain.WorkItem {
	return domain.WorkItem{
		ID:        raw.ID,
		Name:      stringField(raw.Fields, FieldTitle),
		StartDate: stringField(raw.Fields, FieldStartDate),
		EndDate:   stringField(raw.Fields, FieldEndDate),
	}
}

// NormalizeWorkItems maps a batch, preserving order.
func NormalizeWorkItems(raws []RawWorkItem) []domain.WorkItem {
	items := make([]domain.WorkItem, 0, len(raws))
	for _, raw := range raws {
		items = append(items, NormalizeWorkItem(raw))
	}
	return items
}

// NormalizeSprint maps a raw iteration to a Sprint.
func NormalizeSprint(raw RawIteration) domain.Sprint {
	return domain.Sprint{
		ID:        raw.ID,
		Name:      raw.Name,
		StartDate: stringField(raw.Attributes, attrStartDate),
		EndDate:   stringField(raw.Attributes, attrEndDate),
	}
}

// NormalizeSprints maps a batch, preserving order.
func NormalizeSprints(raws []RawIteration) []domain.Sprint {
	sprints := make([]domain.Sprint, 0, len(raws))
	for _, raw := range raws {
		sprints = append(sprints, NormalizeSprint(raw))
	}
	return sprints
}

func stringField(bag map[string]any, key string) string {
	v, ok := bag[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}
