package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/releaseplan/internal/contract"
	"github.com/alexanderramin/releaseplan/internal/domain"
)

// emptyPlanText is shown instead of three empty tables.
const emptyPlanText = "Release plan has no epics, features or sprints."

// FormatReleasePlan renders the three plan sequences as titled tables.
// Items missing a start or end date are flagged as unscheduled.
func FormatReleasePlan(plan domain.ReleasePlan) string {
	if plan.Empty() {
		return Dim(emptyPlanText)
	}
	sections := []string{
		Header(fmt.Sprintf("Epics (%d)", len(plan.Epics))) + "\n" + workItemTable(plan.Epics),
		Header(fmt.Sprintf("Features (%d)", len(plan.Features))) + "\n" + workItemTable(plan.Features),
		Header(fmt.Sprintf("Sprints (%d)", len(plan.Sprints))) + "\n" + sprintTable(plan.Sprints),
	}
	return strings.Join(sections, "\n")
}

func workItemTable(items []domain.WorkItem) string {
	rows := make([][]string, 0, len(items))
	for _, wi := range items {
		rows = append(rows, []string{
			StyleBlue.Render("#" + strconv.Itoa(wi.ID)),
			scheduledName(wi.Name, wi.Scheduled()),
			RemoteDate(wi.StartDate),
			RemoteDate(wi.EndDate),
		})
	}
	return RenderTable([]string{"ID", "NAME", "START", "END"}, rows)
}

func sprintTable(sprints []domain.Sprint) string {
	rows := make([][]string, 0, len(sprints))
	for _, s := range sprints {
		rows = append(rows, []string{
			scheduledName(s.Name, s.Scheduled()),
			RemoteDate(s.StartDate),
			RemoteDate(s.EndDate),
			Dim(TruncID(s.ID)),
		})
	}
	return RenderTable([]string{"NAME", "START", "END", "ID"}, rows)
}

func scheduledName(name string, scheduled bool) string {
	if scheduled {
		return Bold(name)
	}
	return Bold(name) + " " + StyleYellow.Render(unscheduledMarker)
}

const unscheduledMarker = "(unscheduled)"

// FormatSnapshot renders a cached plan with its provenance line.
func FormatSnapshot(s *domain.Snapshot, now time.Time) string {
	meta := fmt.Sprintf("%s  %s  %s",
		Bold(s.Project),
		Dim("cached "+HumanTimestampFrom(s.CreatedAt, now)),
		Dim(TruncID(s.ID)),
	)
	return RenderBox("Release plan", meta+"\n\n"+FormatReleasePlan(s.Plan))
}

// FormatProjectList renders remote projects inside a bordered box.
func FormatProjectList(projects []domain.Project) string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		state := p.State
		if state == "" {
			state = "--"
		}
		rows = append(rows, []string{
			Dim(p.DisplayID()),
			Bold(p.Name),
			state,
			p.Description,
		})
	}
	return RenderBox("Projects", RenderTable([]string{"ID", "NAME", "STATE", "DESCRIPTION"}, rows))
}

// FormatConnectionStatus renders the result of a connectivity probe.
func FormatConnectionStatus(status contract.ConnectionStatus) string {
	return ConnectionIndicator(status.OK()) + "  " + status.Message
}
