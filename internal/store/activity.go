package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const activityLogFileName = "activity.log"

// Activity event names
const (
	EventTaskAdded     = "task_added"
	EventTaskUpdated   = "task_updated"
	EventTaskCompleted = "task_completed"
	EventTaskRemoved   = "task_removed"
)

// ActivityEvent is one line of the activity log.
type ActivityEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Event     string         `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
}

// ActivityLog appends events to a JSON Lines file in the data directory.
type ActivityLog struct {
	path string
	now  func() time.Time
}

// NewActivityLog returns a log writing to dataDir/activity.log.
func NewActivityLog(dataDir string) *ActivityLog {
	return &ActivityLog{
		path: filepath.Join(dataDir, activityLogFileName),
		now:  time.Now,
	}
}

// Path returns the log file location.
func (a *ActivityLog) Path() string {
	return a.path
}

// Log appends one event.
func (a *ActivityLog) Log(event string, data map[string]any) error {
	entry := ActivityEvent{
		Timestamp: a.now(),
		Event:     event,
		Data:      data,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(line)
	return err
}

// TaskAdded logs a task_added event.
func (a *ActivityLog) TaskAdded(id, text string) error {
	return a.Log(EventTaskAdded, map[string]any{
		"task_id": id,
		"text":    text,
	})
}

// TaskUpdated logs a task_updated event listing the changed fields.
func (a *ActivityLog) TaskUpdated(id string, fields []string) error {
	return a.Log(EventTaskUpdated, map[string]any{
		"task_id": id,
		"fields":  fields,
	})
}

// TaskCompleted logs a task_completed event. Repeating tasks record that
// they were rescheduled rather than closed.
func (a *ActivityLog) TaskCompleted(id string, rescheduled bool) error {
	return a.Log(EventTaskCompleted, map[string]any{
		"task_id":     id,
		"rescheduled": rescheduled,
	})
}

// TaskRemoved logs a task_removed event.
func (a *ActivityLog) TaskRemoved(id string) error {
	return a.Log(EventTaskRemoved, map[string]any{
		"task_id": id,
	})
}

// ReadActivity returns every event in the log, oldest first. A missing log is empty.
func ReadActivity(dataDir string) ([]ActivityEvent, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, activityLogFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var events []ActivityEvent
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var ev ActivityEvent
		if err := dec.Decode(&ev); err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}
