// Package scoring turns finalized tasks into a ranked per-member
// contribution table. Pending tasks are excluded from a member's scope:
// work that never left the queue neither earns nor costs points.
package scoring

import (
	"math"
	"sort"

	"github.com/harrisonrobin/mailtask/pkg/model"
)

// Contribution is one member's scored row.
type Contribution struct {
	Rank                 int     `json:"rank"`
	Name                 string  `json:"name"`
	TaskCount            int     `json:"task_count"`
	High                 int     `json:"high"`
	Medium               int     `json:"medium"`
	Normal               int     `json:"normal"`
	BaseScore            int     `json:"base_score"`
	OverdueCount         int     `json:"overdue_count"`
	OverdueDays          int     `json:"overdue_days"`
	CompletedOverdueDays int     `json:"completed_overdue_days"`
	ActiveOverdueDays    int     `json:"active_overdue_days"`
	AvgOverdueDays       float64 `json:"avg_overdue_days"`
	OverdueRate          float64 `json:"overdue_rate"`
	Penalty              float64 `json:"overdue_penalty"`
	Score                float64 `json:"score"`
}

// Rank scores every owner appearing in tasks and returns the table sorted
// by final score, descending. Ties keep first-appearance order relative to
// the input, so the ordering is stable across runs.
func Rank(tasks []model.FinalizedTask) []Contribution {
	perOwner := make(map[string][]model.FinalizedTask)
	var order []string
	for _, t := range tasks {
		for _, owner := range t.Owners {
			if _, ok := perOwner[owner]; !ok {
				order = append(order, owner)
			}
			perOwner[owner] = append(perOwner[owner], t)
		}
	}

	contributions := make([]Contribution, 0, len(order))
	for _, name := range order {
		contributions = append(contributions, score(name, perOwner[name]))
	}

	sort.SliceStable(contributions, func(i, j int) bool {
		return contributions[i].Score > contributions[j].Score
	})
	for i := range contributions {
		contributions[i].Rank = i + 1
	}
	return contributions
}

// score computes one member's row over their non-pending tasks. The
// penalty has three independently gated, additive parts: a flat 0.5 per
// overdue task, the average overdue days divided by 7 once that average
// exceeds a week, and a flat 2 once more than 30% of the member's tasks ran
// overdue.
func score(name string, tasks []model.FinalizedTask) Contribution {
	c := Contribution{Name: name}

	for _, t := range tasks {
		if t.TaskStatus == model.StatusPending {
			continue
		}
		c.TaskCount++
		switch t.Priority {
		case model.PriorityHigh:
			c.High++
		case model.PriorityMedium:
			c.Medium++
		default:
			c.Normal++
		}
		if t.Overdue() {
			c.OverdueCount++
			c.OverdueDays += t.OverdueDays
			if t.TaskStatus == model.StatusCompleted {
				c.CompletedOverdueDays += t.OverdueDays
			} else {
				c.ActiveOverdueDays += t.OverdueDays
			}
		}
	}

	c.BaseScore = c.High*3 + c.Medium*2 + c.Normal*1

	var avgOverdue, penalty float64
	if c.OverdueCount > 0 {
		avgOverdue = float64(c.OverdueDays) / float64(c.OverdueCount)
	}
	if c.TaskCount > 0 {
		rate := float64(c.OverdueCount) / float64(c.TaskCount)
		penalty = float64(c.OverdueCount) * 0.5
		if avgOverdue > 7 {
			penalty += avgOverdue / 7
		}
		if rate > 0.3 {
			penalty += 2
		}
		c.OverdueRate = round1(rate * 100)
	}

	c.AvgOverdueDays = round1(avgOverdue)
	c.Penalty = round1(penalty)
	c.Score = round1(math.Max(0, float64(c.BaseScore)-penalty))
	return c
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
