package statusmail

import (
	"testing"
	"time"

	"github.com/harrisonrobin/mailtask/pkg/model"
)

func testMessage(body string) model.Message {
	return model.Message{
		ID:      "msg-1",
		Subject: "Daily Status Report",
		Body:    body,
		Date:    model.DayOf(time.Date(2025, time.November, 1, 9, 0, 0, 0, time.UTC)),
	}
}

func parseOne(t *testing.T, body string) model.Task {
	t.Helper()
	p := New(true)
	p.Parse(testMessage(body))
	tasks := p.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(tasks))
	}
	return tasks[0]
}

func TestParseBasicTask(t *testing.T) {
	task := parseOne(t, "1. Fix login bug [due 11/26] - alice")

	if task.Title != "Fix login bug" {
		t.Errorf("Expected title 'Fix login bug', got '%s'", task.Title)
	}
	if task.Due != "11/26" {
		t.Errorf("Expected due '11/26', got '%s'", task.Due)
	}
	if len(task.Owners) != 1 || task.Owners[0] != "alice" {
		t.Errorf("Expected owners [alice], got %v", task.Owners)
	}
	if task.Priority != model.PriorityNormal {
		t.Errorf("Expected normal priority, got %s", task.Priority)
	}
	if task.MailID != "msg-1" {
		t.Errorf("Expected mail ID msg-1, got %s", task.MailID)
	}
}

func TestParseStarPriorities(t *testing.T) {
	body := "1. ** Update docs [due: 11/26] - bob\n2. *** Ship release [due 12/05] - carol\n3. * Minor cleanup [due 11/30] - dave"
	p := New(true)
	p.Parse(testMessage(body))

	tasks := p.Tasks()
	if len(tasks) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(tasks))
	}
	if tasks[0].Priority != model.PriorityMedium {
		t.Errorf("Expected ** to mean medium, got %s", tasks[0].Priority)
	}
	if tasks[1].Priority != model.PriorityHigh {
		t.Errorf("Expected *** to mean high, got %s", tasks[1].Priority)
	}
	if tasks[2].Priority != model.PriorityNormal {
		t.Errorf("Expected * to mean normal, got %s", tasks[2].Priority)
	}
}

func TestParseDueNormalization(t *testing.T) {
	task := parseOne(t, "1. Prepare quarterly review [due 926] - alice")
	if task.Due != "9/26" {
		t.Errorf("Expected 3-digit due to normalize to '9/26', got '%s'", task.Due)
	}

	task = parseOne(t, "1. Prepare quarterly review [due date: 1126] - alice")
	if task.Due != "11/26" {
		t.Errorf("Expected 4-digit due to normalize to '11/26', got '%s'", task.Due)
	}
}

func TestParseBareDueToken(t *testing.T) {
	task := parseOne(t, "1. Migrate database [11/26] - alice")
	if task.Due != "11/26" {
		t.Errorf("Expected bare [11/26] to parse as due, got '%s'", task.Due)
	}
}

func TestParseStatusMarkers(t *testing.T) {
	task := parseOne(t, "1. Fix login bug [due 11/26] [status: pending review] - alice")
	if task.Status != "pending review" {
		t.Errorf("Expected status 'pending review', got '%s'", task.Status)
	}

	task = parseOne(t, "1. Fix login bug [due 11/26] [resolved] - alice")
	if task.Status != "resolved" {
		t.Errorf("Expected bare status 'resolved', got '%s'", task.Status)
	}
}

func TestParseRejectsLineWithoutDue(t *testing.T) {
	p := New(true)
	p.Parse(testMessage("1. Discussed the roadmap with the team - alice"))
	if len(p.Tasks()) != 0 {
		t.Errorf("Expected numbered prose without a due token to be ignored, got %d tasks", len(p.Tasks()))
	}
}

func TestParseRejectsLineWithoutOwner(t *testing.T) {
	p := New(true)
	p.Parse(testMessage("1. Fix login bug [due 11/26] - 12345!!!"))
	if len(p.Tasks()) != 0 {
		t.Errorf("Expected line without a valid owner to be rejected, got %d tasks", len(p.Tasks()))
	}
}

func TestParseRejectsDegenerateTitle(t *testing.T) {
	p := New(true)
	p.Parse(testMessage("1. X [due 11/26] - alice"))
	if len(p.Tasks()) != 0 {
		t.Errorf("Expected single-rune title to be rejected, got %d tasks", len(p.Tasks()))
	}
}

func TestParseWhitespaceFallbackSplit(t *testing.T) {
	task := parseOne(t, "1. Deploy [due 11/26] alice")
	if task.Title != "Deploy" {
		t.Errorf("Expected title 'Deploy' from whitespace split, got '%s'", task.Title)
	}
	if len(task.Owners) != 1 || task.Owners[0] != "alice" {
		t.Errorf("Expected owners [alice], got %v", task.Owners)
	}
}

func TestParseOwnerListSplitAndDedup(t *testing.T) {
	task := parseOne(t, "1. Fix login bug [due 11/26] - alice/bob, alice")
	if len(task.Owners) != 2 || task.Owners[0] != "alice" || task.Owners[1] != "bob" {
		t.Errorf("Expected owners [alice bob], got %v", task.Owners)
	}
}

func TestParseCJKOwner(t *testing.T) {
	task := parseOne(t, "1. Fix login bug [due 11/26] - 张三/alice")
	if len(task.Owners) != 2 || task.Owners[0] != "张三" || task.Owners[1] != "alice" {
		t.Errorf("Expected owners [张三 alice], got %v", task.Owners)
	}
}

func TestParseModuleHeader(t *testing.T) {
	body := "[Auth][Backend]\n1. Fix login bug [due 11/26] - alice\n[Frontend]\n2. Polish dashboard [due 11/28] - bob"
	p := New(true)
	p.Parse(testMessage(body))

	tasks := p.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Module != "[Auth][Backend]" {
		t.Errorf("Expected module '[Auth][Backend]', got '%s'", tasks[0].Module)
	}
	if tasks[1].Module != "[Frontend]" {
		t.Errorf("Expected module '[Frontend]', got '%s'", tasks[1].Module)
	}
}

func TestParseRejectsNonModuleHeaders(t *testing.T) {
	// A status marker or a date on its own line must not become the module.
	for _, header := range []string{"[pending]", "[status: done]", "[2025-11-26]", "[11/26]", "[20251126]"} {
		p := New(true)
		p.Parse(testMessage(header + "\n1. Fix login bug [due 11/26] - alice"))
		tasks := p.Tasks()
		if len(tasks) != 1 {
			t.Fatalf("Expected 1 task for header %q, got %d", header, len(tasks))
		}
		if tasks[0].Module != "" {
			t.Errorf("Expected header %q to be rejected as a module, got module '%s'", header, tasks[0].Module)
		}
	}
}

func TestParseModuleResetsBetweenMessages(t *testing.T) {
	p := New(true)
	p.Parse(testMessage("[Auth]\n1. Fix login bug [due 11/26] - alice"))
	p.Parse(testMessage("1. Polish dashboard [due 11/28] - bob"))

	tasks := p.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}
	if tasks[1].Module != "" {
		t.Errorf("Expected module context to reset between messages, got '%s'", tasks[1].Module)
	}
}

func TestParseHaltsAtPriorityCutoff(t *testing.T) {
	body := "1. Fix login bug [due 11/26] - alice\nMiddle Priority:\n2. Refactor settings [due 12/01] - bob"
	p := New(true)
	p.Parse(testMessage(body))
	if len(p.Tasks()) != 1 {
		t.Errorf("Expected parsing to halt at the middle priority marker, got %d tasks", len(p.Tasks()))
	}

	p = New(false)
	p.Parse(testMessage(body))
	if len(p.Tasks()) != 2 {
		t.Errorf("Expected 2 tasks with the cutoff disabled, got %d", len(p.Tasks()))
	}
}

func TestParseHTMLBody(t *testing.T) {
	body := "<html><body><style>p { color: red; }</style><p>[Auth]</p><p>1. Fix login bug [due 11/26] - alice</p></body></html>"
	p := New(true)
	p.Parse(testMessage(body))

	tasks := p.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task from HTML body, got %d", len(tasks))
	}
	if tasks[0].Module != "[Auth]" {
		t.Errorf("Expected module '[Auth]', got '%s'", tasks[0].Module)
	}
	if tasks[0].Title != "Fix login bug" {
		t.Errorf("Expected title 'Fix login bug', got '%s'", tasks[0].Title)
	}
}
