package model

// Hero is the singleton banner shown on the public home page.
type Hero struct {
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	ButtonText      string `json:"button_text"`
	ButtonLink      string `json:"button_link"`
	BackgroundImage string `json:"background_image"`
}

// DefaultHero is served (and persisted) when no hero has been saved yet.
func DefaultHero() Hero {
	return Hero{
		Title:      "Welcome to Your Site",
		Subtitle:   "Build amazing experiences with our platform",
		ButtonText: "Get Started",
		ButtonLink: "#",
	}
}
