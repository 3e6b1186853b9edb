// Package workflow turns matched file-system events into notifications. It
// sits outside the registration core and is specified at its boundary: rule
// matching and notification dispatch are injected collaborators.
package workflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type FileInfo struct {
	ID      int64
	Name    string
	Path    string
	Storage string
}

// Subject is the tagged union of event payloads: a single file or a batch.
type Subject interface {
	firstFile() (FileInfo, bool)
}

type SingleFile struct {
	File FileInfo
}

func (s SingleFile) firstFile() (FileInfo, bool) { return s.File, true }

type FileBatch struct {
	Files []FileInfo
}

// Rule matching only ever considers the first file of a batch.
func (b FileBatch) firstFile() (FileInfo, bool) {
	if len(b.Files) == 0 {
		return FileInfo{}, false
	}
	return b.Files[0], true
}

type EventContext struct {
	EventName string
	Storage   string
	Path      string
}

// Rule is a matched workflow rule; TargetUser is the user the rule addresses.
type Rule struct {
	TargetUser string
}

type RuleMatcher interface {
	MatchRules(ctx context.Context, ec EventContext) ([]Rule, error)
}

type Notification struct {
	ID         uuid.UUID
	App        string
	User       string
	Timestamp  time.Time
	ObjectType string
	ObjectID   string
	Subject    string
	Params     map[string]string
}

type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

func NewNotification(app, user string, ts time.Time, objectType, objectID, subject string, params map[string]string) Notification {
	return Notification{
		ID:         uuid.New(),
		App:        app,
		User:       user,
		Timestamp:  ts,
		ObjectType: objectType,
		ObjectID:   objectID,
		Subject:    subject,
		Params:     params,
	}
}

type Operation struct {
	matcher    RuleMatcher
	dispatcher Dispatcher
	now        func() time.Time
}

func NewOperation(matcher RuleMatcher, dispatcher Dispatcher) *Operation {
	return &Operation{matcher: matcher, dispatcher: dispatcher, now: time.Now}
}

// OnEvent notifies the users addressed by the matching rules. No matching
// rule, or a rule without a target user, emits nothing.
func (o *Operation) OnEvent(ctx context.Context, eventName string, subject Subject, actor string) error {
	file, ok := subject.firstFile()
	if !ok {
		return nil
	}
	rules, err := o.matcher.MatchRules(ctx, EventContext{
		EventName: eventName,
		Storage:   file.Storage,
		Path:      file.Path,
	})
	if err != nil {
		return fmt.Errorf("match rules: %w", err)
	}
	for _, rule := range rules {
		if rule.TargetUser == "" {
			continue
		}
		n := NewNotification("notifications", rule.TargetUser, o.now().UTC(), "file",
			strconv.FormatInt(file.ID, 10), eventName,
			map[string]string{"fileName": file.Name, "user": actor})
		if err := o.dispatcher.Dispatch(ctx, n); err != nil {
			return fmt.Errorf("dispatch notification: %w", err)
		}
	}
	return nil
}
