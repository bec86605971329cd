package google

import (
	"context"
	"fmt"
	"log"

	"github.com/harrisonrobin/mailtask/pkg/auth"
	"github.com/harrisonrobin/mailtask/pkg/index"
)

// NewClient creates a Gmail mail client scoped to one label. The label
// name is resolved to its ID through the persisted index when possible,
// falling back to a Labels.List call.
func NewClient(ctx context.Context, labelName string, idx *index.LabelIndex) (*MailClient, error) {
	srv, err := auth.GetGmailService(ctx)
	if err != nil {
		return nil, err
	}

	var labelID string
	if idx != nil {
		labelID = idx.Get(labelName)
	}

	if labelID == "" {
		labels, err := srv.Users.Labels.List(gmailUser).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve label list: %w", err)
		}
		for _, l := range labels.Labels {
			if l.Name == labelName {
				labelID = l.Id
				break
			}
		}
		if labelID == "" {
			return nil, fmt.Errorf("label %q not found", labelName)
		}
		if idx != nil {
			idx.Set(labelName, labelID)
			if err := idx.Save(); err != nil {
				log.Printf("Warning: failed to save label index: %v", err)
			}
		}
	}

	return &MailClient{srv: srv, labelID: labelID}, nil
}
