package scoring

import (
	"testing"

	"github.com/harrisonrobin/mailtask/pkg/model"
)

func finalized(owner string, prio model.Priority, status model.TaskStatus, overdueDays int) model.FinalizedTask {
	return model.FinalizedTask{
		Title:       "task",
		Owners:      []string{owner},
		Priority:    prio,
		TaskStatus:  status,
		OverdueDays: overdueDays,
	}
}

func TestRankPenaltyAndOrdering(t *testing.T) {
	// Alice and Bob both completed three high priority tasks, but one of
	// Alice's ran 10 days overdue. That trips all three penalty parts:
	// 0.5 per overdue task, 10/7 for the average exceeding a week, and the
	// flat 2 for an overdue rate above 30%.
	tasks := []model.FinalizedTask{
		finalized("alice", model.PriorityHigh, model.StatusCompleted, 10),
		finalized("alice", model.PriorityHigh, model.StatusCompleted, 0),
		finalized("alice", model.PriorityHigh, model.StatusCompleted, 0),
		finalized("bob", model.PriorityHigh, model.StatusCompleted, 0),
		finalized("bob", model.PriorityHigh, model.StatusCompleted, 0),
		finalized("bob", model.PriorityHigh, model.StatusCompleted, 0),
	}

	ranked := Rank(tasks)
	if len(ranked) != 2 {
		t.Fatalf("Expected 2 contributions, got %d", len(ranked))
	}

	bob := ranked[0]
	if bob.Name != "bob" || bob.Rank != 1 {
		t.Errorf("Expected bob ranked 1, got %s at rank %d", bob.Name, bob.Rank)
	}
	if bob.BaseScore != 9 || bob.Penalty != 0 || bob.Score != 9 {
		t.Errorf("Expected bob base 9, penalty 0, score 9; got %d, %v, %v", bob.BaseScore, bob.Penalty, bob.Score)
	}

	alice := ranked[1]
	if alice.Name != "alice" || alice.Rank != 2 {
		t.Errorf("Expected alice ranked 2, got %s at rank %d", alice.Name, alice.Rank)
	}
	if alice.BaseScore != 9 {
		t.Errorf("Expected alice base score 9, got %d", alice.BaseScore)
	}
	if alice.Penalty != 3.9 {
		t.Errorf("Expected alice penalty 3.9, got %v", alice.Penalty)
	}
	if alice.Score != 5.1 {
		t.Errorf("Expected alice score 5.1, got %v", alice.Score)
	}
	if alice.AvgOverdueDays != 10 {
		t.Errorf("Expected alice average overdue 10, got %v", alice.AvgOverdueDays)
	}
	if alice.OverdueRate != 33.3 {
		t.Errorf("Expected alice overdue rate 33.3, got %v", alice.OverdueRate)
	}
	if alice.CompletedOverdueDays != 10 || alice.ActiveOverdueDays != 0 {
		t.Errorf("Expected overdue days bucketed as completed, got completed %d active %d",
			alice.CompletedOverdueDays, alice.ActiveOverdueDays)
	}
}

func TestRankPenaltyGatesStayClosed(t *testing.T) {
	// One mildly overdue task out of four: only the flat 0.5 applies. The
	// average (3 days) stays under a week and the rate (25%) under 30%.
	tasks := []model.FinalizedTask{
		finalized("alice", model.PriorityNormal, model.StatusCompleted, 3),
		finalized("alice", model.PriorityNormal, model.StatusCompleted, 0),
		finalized("alice", model.PriorityNormal, model.StatusCompleted, 0),
		finalized("alice", model.PriorityNormal, model.StatusInProgress, 0),
	}

	ranked := Rank(tasks)
	if len(ranked) != 1 {
		t.Fatalf("Expected 1 contribution, got %d", len(ranked))
	}
	if ranked[0].Penalty != 0.5 {
		t.Errorf("Expected penalty 0.5, got %v", ranked[0].Penalty)
	}
	if ranked[0].Score != 3.5 {
		t.Errorf("Expected score 3.5, got %v", ranked[0].Score)
	}
}

func TestRankExcludesPendingTasks(t *testing.T) {
	tasks := []model.FinalizedTask{
		finalized("alice", model.PriorityHigh, model.StatusCompleted, 0),
		finalized("alice", model.PriorityHigh, model.StatusPending, 12),
	}

	ranked := Rank(tasks)
	if len(ranked) != 1 {
		t.Fatalf("Expected 1 contribution, got %d", len(ranked))
	}
	if ranked[0].TaskCount != 1 {
		t.Errorf("Expected pending tasks excluded from scope, got task count %d", ranked[0].TaskCount)
	}
	if ranked[0].OverdueCount != 0 {
		t.Errorf("Expected pending overdue days ignored, got overdue count %d", ranked[0].OverdueCount)
	}
	if ranked[0].Score != 3 {
		t.Errorf("Expected score 3, got %v", ranked[0].Score)
	}
}

func TestRankScoreFloorsAtZero(t *testing.T) {
	tasks := []model.FinalizedTask{
		finalized("alice", model.PriorityNormal, model.StatusInProgress, 60),
	}

	ranked := Rank(tasks)
	if ranked[0].Score != 0 {
		t.Errorf("Expected score floored at 0, got %v", ranked[0].Score)
	}
	if ranked[0].ActiveOverdueDays != 60 {
		t.Errorf("Expected 60 active overdue days, got %d", ranked[0].ActiveOverdueDays)
	}
}

func TestRankTiesKeepFirstAppearanceOrder(t *testing.T) {
	tasks := []model.FinalizedTask{
		finalized("carol", model.PriorityNormal, model.StatusCompleted, 0),
		finalized("alice", model.PriorityNormal, model.StatusCompleted, 0),
	}

	ranked := Rank(tasks)
	if len(ranked) != 2 {
		t.Fatalf("Expected 2 contributions, got %d", len(ranked))
	}
	if ranked[0].Name != "carol" || ranked[1].Name != "alice" {
		t.Errorf("Expected tied members in first-appearance order [carol alice], got [%s %s]",
			ranked[0].Name, ranked[1].Name)
	}
}

func TestRankSharedTaskCountsForEachOwner(t *testing.T) {
	shared := model.FinalizedTask{
		Title:      "joint effort",
		Owners:     []string{"alice", "bob"},
		Priority:   model.PriorityMedium,
		TaskStatus: model.StatusCompleted,
	}

	ranked := Rank([]model.FinalizedTask{shared})
	if len(ranked) != 2 {
		t.Fatalf("Expected 2 contributions for a shared task, got %d", len(ranked))
	}
	for _, c := range ranked {
		if c.BaseScore != 2 {
			t.Errorf("Expected base score 2 for %s, got %d", c.Name, c.BaseScore)
		}
	}
}
