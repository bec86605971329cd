package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/harrisonrobin/mailtask/pkg/auth"
	"github.com/harrisonrobin/mailtask/pkg/colors"
	"github.com/harrisonrobin/mailtask/pkg/config"
	"github.com/harrisonrobin/mailtask/pkg/export"
	"github.com/harrisonrobin/mailtask/pkg/google"
	"github.com/harrisonrobin/mailtask/pkg/index"
	"github.com/harrisonrobin/mailtask/pkg/mailfile"
	"github.com/harrisonrobin/mailtask/pkg/model"
	"github.com/harrisonrobin/mailtask/pkg/outlook"
	"github.com/harrisonrobin/mailtask/pkg/statusmail"
	"github.com/harrisonrobin/mailtask/pkg/stats"
)

func main() {
	// 1. Parse Flags
	labelName := flag.String("label", "", "Gmail label holding status reports (overrides config)")
	setLabel := flag.String("set-label", "", "Set the default Gmail label")
	doAuth := flag.Bool("auth", false, "Authenticate with Gmail")
	inputFile := flag.String("input", "", "Read messages from a local YAML/JSON file instead of Gmail")
	outlookFolder := flag.String("outlook", "", "Read messages from an Outlook folder path (account/folder/...)")
	startStr := flag.String("start", "", "Start of the date range, YYYY-MM-DD (default: 30 days ago)")
	endStr := flag.String("end", "", "End of the date range, YYYY-MM-DD (default: today)")
	excelPath := flag.String("excel", "", "Write the summary workbook to this .xlsx path")
	excludeMiddle := flag.Bool("exclude-middle-priority", true, "Stop parsing a message at the middle/low priority marker")
	excludeLate := flag.Bool("exclude-after-5pm", true, "Drop messages received at 17:00 or later")
	flag.Parse()

	// 2. Handle Set Label
	if *setLabel != "" {
		cfg := &config.Config{Label: *setLabel}
		if err := config.Save(cfg); err != nil {
			log.Fatalf("Error saving config: %v", err)
		}
		fmt.Printf("Default label set to: %s\n", *setLabel)
		return
	}

	// 3. Determine Settings (Priority: Flag > Config > Default)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	selectedLabel := cfg.Label
	if *labelName != "" {
		selectedLabel = *labelName
	}
	excludeMiddlePriority := cfg.MiddlePriorityExcluded()
	excludeAfter5pm := cfg.After5pmExcluded()
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "exclude-middle-priority":
			excludeMiddlePriority = *excludeMiddle
		case "exclude-after-5pm":
			excludeAfter5pm = *excludeLate
		}
	})

	// 4. Handle Authentication
	if *doAuth {
		ctx := context.Background()
		xdgConfigBase, err := auth.GetXdgHome()
		if err != nil {
			log.Fatalf("could not find path to configuration file: error %v", err)
		}

		tokenFile := filepath.Join(xdgConfigBase, auth.TokenFile)
		_, err = os.Stat(tokenFile)
		if err != nil {
			if !os.IsNotExist(err) {
				log.Printf("could not check token file '%s', error %v", tokenFile, err)
			}
		} else {
			log.Printf("Removing existing token file at '%s'\n", tokenFile)
			if err = os.Remove(tokenFile); err != nil {
				log.Fatalf("could not delete token file '%s', error %v. Please delete it manually", tokenFile, err)
			}
		}

		_, err = auth.GetGmailService(ctx)
		if err != nil {
			log.Fatalf("Authentication failed: %v", err)
		}
		log.Printf("Authentication successful! Token saved to %s", auth.TokenFile)
		return
	}

	// 5. Resolve the Date Range
	now := time.Now()
	end := model.DayOf(now)
	if *endStr != "" {
		end, err = model.ParseDay(*endStr)
		if err != nil {
			log.Fatalf("Invalid -end date %q: %v", *endStr, err)
		}
	}
	start := model.DayOf(end.AddDate(0, 0, -30))
	if *startStr != "" {
		start, err = model.ParseDay(*startStr)
		if err != nil {
			log.Fatalf("Invalid -start date %q: %v", *startStr, err)
		}
	}
	if end.Before(start.Time) {
		log.Fatalf("Date range is empty: start %s is after end %s", start, end)
	}

	// 6. Fetch Messages
	messages, err := fetchMessages(*inputFile, *outlookFolder, selectedLabel, start, end, excludeAfter5pm)
	if err != nil {
		log.Fatalf("Error fetching messages: %v", err)
	}
	if len(messages) == 0 {
		log.Printf("No messages found between %s and %s", start, end)
	}

	// 7. Parse and Analyze
	parser := statusmail.New(excludeMiddlePriority)
	for _, msg := range messages {
		parser.Parse(msg)
	}

	tracker := stats.New()
	tracker.AddAll(parser.Tasks())
	summary := tracker.Summary(now)

	// 8. Export
	if *excelPath != "" {
		moduleColors, err := colors.NewModuleColors()
		if err != nil {
			log.Printf("Warning: failed to initialize module colors: %v", err)
		}
		if err := export.Write(*excelPath, summary, moduleColors); err != nil {
			log.Fatalf("Error writing workbook: %v", err)
		}
		if moduleColors != nil {
			if err := moduleColors.Save(); err != nil {
				log.Printf("Warning: failed to save module colors: %v", err)
			}
		}
		log.Printf("Workbook written to %s", *excelPath)
	}

	// 9. Output Summary JSON
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		log.Fatalf("Error encoding summary: %v", err)
	}
}

// fetchMessages picks the mail source: a local file, an Outlook folder, or
// the Gmail label, in that order of precedence.
func fetchMessages(inputFile, outlookFolder, label string, start, end model.Day, excludeAfter5pm bool) ([]model.Message, error) {
	if inputFile != "" {
		messages, err := mailfile.Load(inputFile)
		if err != nil {
			return nil, err
		}
		var inRange []model.Message
		for _, msg := range messages {
			if msg.Date.Before(start.Time) || msg.Date.After(end.Time) {
				continue
			}
			inRange = append(inRange, msg)
		}
		return inRange, nil
	}

	if outlookFolder != "" {
		client, err := outlook.NewClient()
		if err != nil {
			return nil, err
		}
		defer client.Close()
		return client.FetchMessages(outlookFolder, start, end, excludeAfter5pm)
	}

	ctx := context.Background()
	labelIndex, err := index.NewLabelIndex()
	if err != nil {
		log.Printf("Warning: failed to initialize label index: %v", err)
	}
	client, err := google.NewClient(ctx, label, labelIndex)
	if err != nil {
		return nil, err
	}
	return client.FetchMessages(ctx, start, end, excludeAfter5pm)
}
