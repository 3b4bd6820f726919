package models

import (
	"encoding/json"
	"time"
)

// NoticeStatus is the publication state of a notice.
type NoticeStatus string

const (
	NoticeDraft     NoticeStatus = "draft"
	NoticePublished NoticeStatus = "published"
	NoticeArchived  NoticeStatus = "archived"
)

var NoticeStatuses = []string{string(NoticeDraft), string(NoticePublished), string(NoticeArchived)}

// Notice is an announcement shown to tutors or guardians.
type Notice struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Body     string       `json:"body"`
	Audience string       `json:"audience"`
	Status   NoticeStatus `json:"status"`
	Created  time.Time    `json:"created_at"`
}

// UnmarshalJSON decodes the record and pins Status to a known state.
func (n *Notice) UnmarshalJSON(data []byte) error {
	type plain Notice
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Notice(raw)
	n.Status = NoticeStatus(normalizeStatus(string(n.Status), NoticeStatuses))
	return nil
}

func (n Notice) RecordID() string     { return n.ID }
func (n Notice) CreatedAt() time.Time { return n.Created }

func (n Notice) SearchText() []string {
	return []string{n.Title, n.Body, n.Audience}
}

func (n Notice) Attribute(key string) (string, bool) {
	switch key {
	case "status":
		return attr(string(n.Status))
	case "audience":
		return attr(n.Audience)
	}
	return "", false
}

func (n Notice) Fields() map[string]any {
	return map[string]any{
		"title":    n.Title,
		"body":     n.Body,
		"audience": n.Audience,
		"status":   string(n.Status),
	}
}

func (n Notice) Columns() ([]string, []string) {
	return []string{"Title", "Audience", "Status", "Created"},
		[]string{n.Title, n.Audience, string(n.Status), n.Created.Format("2006-01-02")}
}
