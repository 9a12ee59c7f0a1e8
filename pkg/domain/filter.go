package domain

// Filter is a named set of lowercase keyword substrings used to classify
// events by topic. An empty keyword list means "match everything".
type Filter struct {
	Key      string   `yaml:"key" json:"key"`
	Label    string   `yaml:"label" json:"label"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// All reports whether the filter is the universal one
func (f Filter) All() bool { return len(f.Keywords) == 0 }

// Channel represents a content source as reported by the backend's
// debug channel listing, avatar may be null
type Channel struct {
	Name   string  `json:"name"`
	Subs   int     `json:"subs"`
	Avatar *string `json:"avatar,omitempty"`
}

// Profile holds the locally persisted user preferences: display name,
// free-text city and the set of selected interest keys
type Profile struct {
	Name     string   `json:"name"`
	City     string   `json:"city"`
	Selected []string `json:"selected"`
}
