package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/harrisonrobin/mailtask/pkg/model"
	"github.com/harrisonrobin/mailtask/pkg/overdue"
)

// lifecycle tracks one identity key between its first appearance and its
// disappearance. The latest record is replaced wholesale on every
// reappearance; attribute drift across snapshots is expected and the newest
// mention wins.
type lifecycle struct {
	firstSeen model.Day
	latest    model.Task
	active    bool
}

// resolveLifecycles groups raw records into per-day snapshots, deduplicates
// each day, and walks the days in order. Absence from a day after presence
// on the previous one is the input format's only completion signal. Keys
// still present after the last day finalize as pending or in progress, with
// overdue measured against now so that it keeps advancing between runs.
//
// Per-day and cross-day orders are first-appearance order, so identical
// input always yields an identical result list.
func resolveLifecycles(raw []model.Task, now time.Time) []model.FinalizedTask {
	if len(raw) == 0 {
		return nil
	}

	byDate := make(map[string][]model.Task)
	dayFor := make(map[string]model.Day)
	var dates []string
	for _, t := range raw {
		k := t.MailDate.String()
		if _, ok := byDate[k]; !ok {
			dates = append(dates, k)
			dayFor[k] = t.MailDate
		}
		byDate[k] = append(byDate[k], t)
	}
	sort.Strings(dates)

	tracker := make(map[string]*lifecycle)
	var final []model.FinalizedTask
	var prevKeys []string

	for i, date := range dates {
		day := dayFor[date]
		dayKeys, dayTasks := dedupeDay(byDate[date])

		current := make(map[string]bool, len(dayKeys))
		for _, k := range dayKeys {
			current[k] = true
		}

		// Keys gone since the previous day completed on that previous day.
		for _, key := range prevKeys {
			lc := tracker[key]
			if lc == nil || !lc.active || current[key] {
				continue
			}
			completedOn := day
			if i > 0 {
				completedOn = dayFor[dates[i-1]]
			}
			final = append(final, finalizeCompleted(lc, completedOn))
			lc.active = false
		}

		for _, key := range dayKeys {
			t := dayTasks[key]
			if lc, ok := tracker[key]; ok && lc.active {
				lc.latest = t
			} else {
				// New key, or a completed key reappearing: a fresh
				// lifecycle instance, not a resumption.
				tracker[key] = &lifecycle{firstSeen: day, latest: t, active: true}
			}
		}

		prevKeys = dayKeys
	}

	lastDay := dayFor[dates[len(dates)-1]]
	for _, key := range prevKeys {
		lc := tracker[key]
		if lc == nil || !lc.active {
			continue
		}
		final = append(final, finalizeOpen(lc, lastDay, now))
		lc.active = false
	}

	return final
}

// dedupeDay collapses same-day duplicates of an identity key. The higher
// priority copy wins; ties keep the first seen. Key order is first-seen
// order within the day.
func dedupeDay(tasks []model.Task) ([]string, map[string]model.Task) {
	dayTasks := make(map[string]model.Task, len(tasks))
	var order []string
	for _, t := range tasks {
		key := t.Key()
		if existing, ok := dayTasks[key]; ok {
			if t.Priority.Weight() > existing.Priority.Weight() {
				dayTasks[key] = t
			}
			continue
		}
		dayTasks[key] = t
		order = append(order, key)
	}
	return order, dayTasks
}

func finalizeCompleted(lc *lifecycle, completedOn model.Day) model.FinalizedTask {
	ft := toFinalized(lc.latest)
	ft.TaskStatus = model.StatusCompleted
	ft.FirstSeen = lc.firstSeen
	ft.LastSeen = completedOn
	ft.OverdueDays = overdue.DaysLate(ft.Due, lc.firstSeen.Time, completedOn.Time)
	ft.DaysSpent = lc.firstSeen.DaysUntil(completedOn) + 1
	return ft
}

func finalizeOpen(lc *lifecycle, lastDay model.Day, now time.Time) model.FinalizedTask {
	ft := toFinalized(lc.latest)
	if strings.Contains(strings.ToLower(lc.latest.Status), "pending") {
		ft.TaskStatus = model.StatusPending
	} else {
		ft.TaskStatus = model.StatusInProgress
	}
	ft.FirstSeen = lc.firstSeen
	ft.LastSeen = lastDay
	ft.OverdueDays = overdue.DaysLateNow(ft.Due, now)
	ft.DaysSpent = lc.firstSeen.DaysUntil(lastDay) + 1
	return ft
}

func toFinalized(t model.Task) model.FinalizedTask {
	return model.FinalizedTask{
		Module:      t.Module,
		Title:       t.Title,
		Owners:      t.Owners,
		Priority:    t.Priority,
		Due:         t.Due,
		Status:      t.Status,
		MailSubject: t.MailSubject,
		MailID:      t.MailID,
	}
}
