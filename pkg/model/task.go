package model

import (
	"sort"
	"strings"
)

// Priority of a task, derived from the leading asterisk count on its line.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityNormal Priority = "normal"
)

// Weight returns the scoring weight of the priority.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

// TaskStatus is the resolved lifecycle state of a finalized task.
type TaskStatus string

const (
	StatusCompleted  TaskStatus = "completed"
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
)

// Message is one decoded status-report mail, as delivered by a mail source.
// Date is required; the lifecycle walk depends on date ordering, so sources
// must reject messages whose received date cannot be resolved.
type Message struct {
	ID      string `json:"id" yaml:"id"`
	Subject string `json:"subject" yaml:"subject"`
	Body    string `json:"body" yaml:"body"`
	Date    Day    `json:"date" yaml:"date"`
	Time    string `json:"time,omitempty" yaml:"time,omitempty"`
}

// Task is one raw task mention extracted from a single message.
type Task struct {
	Title       string   `json:"title"`
	Owners      []string `json:"owners"`
	Priority    Priority `json:"priority"`
	Due         string   `json:"due"` // partial date, "MM/DD"
	Status      string   `json:"status,omitempty"`
	Module      string   `json:"module,omitempty"`
	MailDate    Day      `json:"mail_date"`
	MailSubject string   `json:"mail_subject,omitempty"`
	MailID      string   `json:"mail_id,omitempty"`
}

// Key returns the identity key correlating the same logical task across
// snapshots: normalized title + due + sorted owners.
func (t Task) Key() string {
	owners := append([]string(nil), t.Owners...)
	sort.Strings(owners)
	return strings.ToLower(strings.TrimSpace(t.Title)) + "|" + t.Due + "|" + strings.Join(owners, ",")
}

// FinalizedTask is one resolved lifecycle instance of a task: either it
// disappeared from a later snapshot (completed) or it was still present in
// the last one (pending / in progress).
type FinalizedTask struct {
	Module      string     `json:"module,omitempty"`
	Title       string     `json:"title"`
	Owners      []string   `json:"owners"`
	Priority    Priority   `json:"priority"`
	Due         string     `json:"due"`
	Status      string     `json:"status,omitempty"`
	TaskStatus  TaskStatus `json:"task_status"`
	OverdueDays int        `json:"overdue_days"`
	DaysSpent   int        `json:"days_spent"`
	FirstSeen   Day        `json:"first_seen"`
	LastSeen    Day        `json:"last_seen"`
	MailSubject string     `json:"mail_subject,omitempty"`
	MailID      string     `json:"mail_id,omitempty"`
}

// Overdue reports whether the task missed its due date.
func (t FinalizedTask) Overdue() bool {
	return t.OverdueDays > 0
}

// OwnersString joins the owners for display.
func (t FinalizedTask) OwnersString() string {
	return strings.Join(t.Owners, "/")
}
