// Package outlook retrieves status-report messages from a running Outlook
// instance over COM. It only works where Outlook and COM exist; on other
// platforms NewClient returns an error and callers fall back to the Gmail
// or file sources.
package outlook

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"github.com/google/uuid"

	"github.com/harrisonrobin/mailtask/pkg/model"
)

// Client wraps the Outlook application object and its MAPI namespace.
type Client struct {
	outlook   *ole.IDispatch
	namespace *ole.IDispatch
}

// NewClient attaches to a running Outlook instance, creating one when none
// is running.
func NewClient() (*Client, error) {
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		ole.CoInitialize(0)
	}

	app, err := oleutil.GetActiveObject("Outlook.Application")
	if err != nil {
		app, err = oleutil.CreateObject("Outlook.Application")
		if err != nil {
			return nil, fmt.Errorf("unable to connect to Outlook: %w", err)
		}
	}

	dispatch := app.MustQueryInterface(ole.IID_IDispatch)
	ns, err := oleutil.CallMethod(dispatch, "GetNamespace", "MAPI")
	if err != nil {
		dispatch.Release()
		return nil, fmt.Errorf("unable to get Outlook MAPI namespace: %w", err)
	}

	return &Client{outlook: dispatch, namespace: ns.ToIDispatch()}, nil
}

// Close releases the COM objects.
func (c *Client) Close() {
	if c.namespace != nil {
		c.namespace.Release()
	}
	if c.outlook != nil {
		c.outlook.Release()
	}
	ole.CoUninitialize()
}

// FetchMessages reads messages from the folder at the /-separated path
// (account/folder/subfolder...) received between start and end, inclusive.
// With excludeAfter5pm set, messages received at 17:00 or later are
// dropped.
func (c *Client) FetchMessages(folderPath string, start, end model.Day, excludeAfter5pm bool) ([]model.Message, error) {
	folder, err := c.findFolder(folderPath)
	if err != nil {
		return nil, err
	}
	defer folder.Release()

	itemsProp, err := oleutil.GetProperty(folder, "Items")
	if err != nil {
		return nil, fmt.Errorf("unable to access folder items: %w", err)
	}
	items := itemsProp.ToIDispatch()
	defer items.Release()

	if _, err := oleutil.CallMethod(items, "Sort", "[ReceivedTime]", true); err != nil {
		log.Printf("Warning: could not sort folder items: %v", err)
	}

	// Server-side date filter; received dates are re-checked below since
	// Restrict is not available on every store type.
	target := items
	filter := fmt.Sprintf("[ReceivedTime] >= '%s' AND [ReceivedTime] < '%s'",
		start.Format("01/02/2006"), end.AddDate(0, 0, 1).Format("01/02/2006"))
	if restricted, err := oleutil.CallMethod(items, "Restrict", filter); err == nil {
		target = restricted.ToIDispatch()
		defer target.Release()
	} else {
		log.Printf("Warning: date filter unavailable, scanning all items: %v", err)
	}

	countProp, err := oleutil.GetProperty(target, "Count")
	if err != nil {
		return nil, fmt.Errorf("unable to count folder items: %w", err)
	}
	count := int(countProp.Val)

	var messages []model.Message
	for i := 1; i <= count; i++ {
		itemProp, err := oleutil.GetProperty(target, "Item", i)
		if err != nil {
			continue
		}
		item := itemProp.ToIDispatch()

		if msg, ok := extractMessage(item, start, end, excludeAfter5pm); ok {
			messages = append(messages, msg)
		}

		item.Release()
		itemProp.Clear()
	}

	return messages, nil
}

// findFolder walks the namespace folder tree along a /-separated path.
func (c *Client) findFolder(path string) (*ole.IDispatch, error) {
	segments := strings.Split(path, "/")

	parent := c.namespace
	var current *ole.IDispatch
	for _, segment := range segments {
		foldersProp, err := oleutil.GetProperty(parent, "Folders")
		if err != nil {
			return nil, fmt.Errorf("unable to list folders under %q: %w", segment, err)
		}
		folders := foldersProp.ToIDispatch()

		itemProp, err := oleutil.GetProperty(folders, "Item", segment)
		folders.Release()
		if err != nil {
			if current != nil {
				current.Release()
			}
			return nil, fmt.Errorf("folder %q not found in path %q: %w", segment, path, err)
		}

		next := itemProp.ToIDispatch()
		if current != nil {
			current.Release()
		}
		current = next
		parent = current
	}

	if current == nil {
		return nil, fmt.Errorf("empty folder path")
	}
	return current, nil
}

func extractMessage(item *ole.IDispatch, start, end model.Day, excludeAfter5pm bool) (model.Message, bool) {
	rtProp, err := oleutil.GetProperty(item, "ReceivedTime")
	if err != nil {
		return model.Message{}, false
	}
	received, ok := rtProp.Value().(time.Time)
	rtProp.Clear()
	if !ok {
		return model.Message{}, false
	}

	day := model.DayOf(received)
	if day.Before(start.Time) || day.After(end.Time) {
		return model.Message{}, false
	}
	if excludeAfter5pm && received.Hour() >= 17 {
		return model.Message{}, false
	}

	msg := model.Message{
		ID:   stringProperty(item, "EntryID"),
		Date: day,
		Time: received.Format("15:04"),
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.Subject = stringProperty(item, "Subject")
	msg.Body = stringProperty(item, "HTMLBody")
	if msg.Body == "" {
		msg.Body = stringProperty(item, "Body")
	}
	return msg, true
}

func stringProperty(item *ole.IDispatch, name string) string {
	prop, err := oleutil.GetProperty(item, name)
	if err != nil {
		return ""
	}
	defer prop.Clear()
	return prop.ToString()
}
