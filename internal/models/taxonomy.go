package models

// Category groups the subjects and class levels a tutor may teach.
type Category struct {
	Name     string   `json:"name"`
	Subjects []string `json:"subjects"`
	Classes  []string `json:"classes"`
}

// District lists the areas inside one district.
type District struct {
	Name  string   `json:"name"`
	Areas []string `json:"areas"`
}

// Taxonomy is the full option catalogue used by tag editors.
type Taxonomy struct {
	Categories []Category `json:"categories"`
	Districts  []District `json:"districts"`
}
