package models

import (
	"encoding/json"
	"fmt"
)

// IconKind is the closed set of icons the admin menu can show.
type IconKind int

const (
	IconDashboard IconKind = iota
	IconTutors
	IconRequests
	IconDemo
	IconLetter
	IconNotice
	IconTaxonomy
	IconSettings
)

// String returns the wire name of the icon.
func (k IconKind) String() string {
	switch k {
	case IconDashboard:
		return "dashboard"
	case IconTutors:
		return "tutors"
	case IconRequests:
		return "requests"
	case IconDemo:
		return "demo"
	case IconLetter:
		return "letter"
	case IconNotice:
		return "notice"
	case IconTaxonomy:
		return "taxonomy"
	case IconSettings:
		return "settings"
	}
	return fmt.Sprintf("IconKind(%d)", int(k))
}

// ParseIconKind resolves a wire name back to an IconKind.
func ParseIconKind(raw string) (IconKind, error) {
	switch raw {
	case "dashboard":
		return IconDashboard, nil
	case "tutors":
		return IconTutors, nil
	case "requests":
		return IconRequests, nil
	case "demo":
		return IconDemo, nil
	case "letter":
		return IconLetter, nil
	case "notice":
		return IconNotice, nil
	case "taxonomy":
		return IconTaxonomy, nil
	case "settings":
		return IconSettings, nil
	}
	return 0, fmt.Errorf("unknown icon %q", raw)
}

// MarshalJSON encodes the icon by name.
func (k IconKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes an icon name.
func (k *IconKind) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseIconKind(raw)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MenuItem is one node of the admin navigation tree.
type MenuItem struct {
	ID       string     `json:"id"`
	Label    string     `json:"label"`
	Icon     IconKind   `json:"icon"`
	Kind     EntityKind `json:"kind,omitempty"`
	Roles    []UserRole `json:"-"`
	Children []MenuItem `json:"children,omitempty"`
}

// VisibleTo reports whether role may see the item. No roles means everyone.
func (m MenuItem) VisibleTo(role UserRole) bool {
	if len(m.Roles) == 0 {
		return true
	}
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}
