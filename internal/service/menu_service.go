package service

import "github.com/tawhid3482/geniustutors-console/internal/models"

var (
	managers = []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin}
	everyone = []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin, models.RoleModerator}
)

// DefaultMenu is the console navigation tree.
var DefaultMenu = []models.MenuItem{
	{ID: "dashboard", Label: "Dashboard", Icon: models.IconDashboard},
	{ID: "tutors", Label: "Tutors", Icon: models.IconTutors, Kind: models.KindTutor, Roles: everyone},
	{ID: "tuition-requests", Label: "Tuition Requests", Icon: models.IconRequests, Kind: models.KindTuitionRequest, Roles: everyone},
	{ID: "demo-classes", Label: "Demo Classes", Icon: models.IconDemo, Kind: models.KindDemoClass, Roles: everyone},
	{ID: "appointment-letters", Label: "Appointment Letters", Icon: models.IconLetter, Kind: models.KindAppointmentLetter, Roles: managers},
	{ID: "notices", Label: "Notices", Icon: models.IconNotice, Kind: models.KindNotice, Roles: managers},
	{
		ID: "taxonomy", Label: "Taxonomy", Icon: models.IconTaxonomy, Roles: managers,
		Children: []models.MenuItem{
			{ID: "categories", Label: "Categories", Icon: models.IconTaxonomy},
			{ID: "districts", Label: "Districts", Icon: models.IconTaxonomy},
		},
	},
	{ID: "settings", Label: "Settings", Icon: models.IconSettings, Roles: []models.UserRole{models.RoleSuperAdmin}},
}

// MenuService resolves the navigation tree for a role.
type MenuService struct {
	items []models.MenuItem
}

// NewMenuService builds a MenuService over items, or DefaultMenu when empty.
func NewMenuService(items []models.MenuItem) *MenuService {
	if len(items) == 0 {
		items = DefaultMenu
	}
	return &MenuService{items: items}
}

// Menu returns the items visible to role. Groups left without children are dropped.
func (s *MenuService) Menu(role models.UserRole) []models.MenuItem {
	return filterMenu(s.items, role)
}

// Allows reports whether role may open views of kind.
func (s *MenuService) Allows(role models.UserRole, kind models.EntityKind) bool {
	return containsKind(s.Menu(role), kind)
}

func filterMenu(items []models.MenuItem, role models.UserRole) []models.MenuItem {
	out := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if !item.VisibleTo(role) {
			continue
		}
		if len(item.Children) > 0 {
			item.Children = filterMenu(item.Children, role)
			if len(item.Children) == 0 {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

func containsKind(items []models.MenuItem, kind models.EntityKind) bool {
	for _, item := range items {
		if item.Kind == kind || containsKind(item.Children, kind) {
			return true
		}
	}
	return false
}
