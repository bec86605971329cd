// Package stats accumulates raw task records across all fetched messages,
// resolves task lifecycles over the per-day snapshot sequence, and
// assembles the analysis summary. The whole computation is an in-memory
// batch: nothing here does I/O and a Stats value is cheap to throw away.
package stats

import (
	"sort"
	"time"

	"github.com/harrisonrobin/mailtask/pkg/model"
	"github.com/harrisonrobin/mailtask/pkg/scoring"
)

// Stats collects raw task records. Call Add for every parsed record, then
// Summary once all messages are in; the lifecycle walk needs the complete
// date range before it can tell completion from absence.
type Stats struct {
	raw          []model.Task
	members      map[string]bool
	lastMailDate model.Day
}

// MemberSummary is one member's task breakdown. Score is the
// priority-weighted count of completed tasks only (the contribution table
// in scoring applies the overdue penalty on top of a broader scope).
type MemberSummary struct {
	Name       string                `json:"name"`
	Total      int                   `json:"total"`
	Completed  int                   `json:"completed"`
	Pending    int                   `json:"pending"`
	InProgress int                   `json:"in_progress"`
	High       int                   `json:"high"`
	Medium     int                   `json:"medium"`
	Normal     int                   `json:"normal"`
	Score      int                   `json:"score"`
	Tasks      []model.FinalizedTask `json:"tasks,omitempty"`
}

// Summary is the full analysis output handed to presentation and export.
// OverdueCount spans all finalized tasks, completed ones included;
// ActiveOverdueCount restricts to tasks still open. Both are kept because
// the two readings answer different questions.
type Summary struct {
	TotalTasks         int                    `json:"total_tasks"`
	TotalMembers       int                    `json:"total_members"`
	CompletedCount     int                    `json:"completed_count"`
	PendingCount       int                    `json:"pending_count"`
	InProgressCount    int                    `json:"in_progress_count"`
	OverdueCount       int                    `json:"overdue_count"`
	NotOverdueCount    int                    `json:"not_overdue_count"`
	ActiveOverdueCount int                    `json:"active_overdue_count"`
	LastMailDate       model.Day              `json:"last_mail_date"`
	PriorityCounts     map[model.Priority]int `json:"priority_counts"`
	ModuleStats        map[string]int         `json:"module_stats"`
	Tasks              []model.FinalizedTask  `json:"all_tasks"`
	Members            []MemberSummary        `json:"members"`
	MemberNames        []string               `json:"member_list"`
	Contribution       []scoring.Contribution `json:"contribution"`
}

func New() *Stats {
	return &Stats{members: make(map[string]bool)}
}

// Add records one raw task mention.
func (s *Stats) Add(t model.Task) {
	s.raw = append(s.raw, t)
	for _, owner := range t.Owners {
		s.members[owner] = true
	}
	if t.MailDate.After(s.lastMailDate.Time) {
		s.lastMailDate = t.MailDate
	}
}

// AddAll records a batch of raw task mentions.
func (s *Stats) AddAll(tasks []model.Task) {
	for _, t := range tasks {
		s.Add(t)
	}
}

// Summary resolves lifecycles and aggregates everything. now anchors the
// overdue evaluation of still-open tasks. The result is recomputed from
// scratch on every call; Stats keeps no derived state.
func (s *Stats) Summary(now time.Time) *Summary {
	tasks := resolveLifecycles(s.raw, now)
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[j].LastSeen.Before(tasks[i].LastSeen.Time)
	})

	sum := &Summary{
		TotalTasks:     len(tasks),
		TotalMembers:   len(s.members),
		LastMailDate:   s.lastMailDate,
		PriorityCounts: make(map[model.Priority]int),
		ModuleStats:    make(map[string]int),
		Tasks:          tasks,
	}

	memberStats := make(map[string]*MemberSummary)
	var memberOrder []string

	for _, t := range tasks {
		switch t.TaskStatus {
		case model.StatusCompleted:
			sum.CompletedCount++
		case model.StatusPending:
			sum.PendingCount++
		default:
			sum.InProgressCount++
		}

		if t.Overdue() {
			sum.OverdueCount++
			if t.TaskStatus != model.StatusCompleted {
				sum.ActiveOverdueCount++
			}
		} else {
			sum.NotOverdueCount++
		}

		sum.PriorityCounts[t.Priority]++

		module := t.Module
		if module == "" {
			module = "uncategorized"
		}
		sum.ModuleStats[module]++

		for _, owner := range t.Owners {
			ms, ok := memberStats[owner]
			if !ok {
				ms = &MemberSummary{Name: owner}
				memberStats[owner] = ms
				memberOrder = append(memberOrder, owner)
			}
			ms.Total++
			switch t.TaskStatus {
			case model.StatusCompleted:
				ms.Completed++
				ms.Score += t.Priority.Weight()
			case model.StatusPending:
				ms.Pending++
			default:
				ms.InProgress++
			}
			switch t.Priority {
			case model.PriorityHigh:
				ms.High++
			case model.PriorityMedium:
				ms.Medium++
			default:
				ms.Normal++
			}
			ms.Tasks = append(ms.Tasks, t)
		}
	}

	sum.Members = make([]MemberSummary, 0, len(memberOrder))
	for _, name := range memberOrder {
		sum.Members = append(sum.Members, *memberStats[name])
	}
	sort.SliceStable(sum.Members, func(i, j int) bool {
		return sum.Members[i].Total > sum.Members[j].Total
	})

	sum.MemberNames = make([]string, 0, len(s.members))
	for name := range s.members {
		sum.MemberNames = append(sum.MemberNames, name)
	}
	sort.Strings(sum.MemberNames)

	sum.Contribution = scoring.Rank(tasks)
	return sum
}
