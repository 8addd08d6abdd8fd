package rules

// File is the on-disk shape of the rules YAML. Every field is optional;
// empty fields keep the built-in defaults.
type File struct {
	Boards             map[string]string `yaml:"boards"`              // category -> listing URL
	SocialMarkers      []string          `yaml:"social_markers"`      // listing entries to skip
	BoilerplatePhrases []string          `yaml:"boilerplate_phrases"` // body lines to drop
	ContentSelectors   []string          `yaml:"content_selectors"`   // tried in order
}
