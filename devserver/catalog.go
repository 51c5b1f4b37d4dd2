package devserver

import "github.com/kochabx/portfoliohub/api"

var templates = []api.Template{
	{ID: "minimal", Name: "Minimal", Description: "Single column, typography first", Category: "personal"},
	{ID: "gallery", Name: "Gallery", Description: "Grid of project thumbnails", Category: "design"},
	{ID: "developer", Name: "Developer", Description: "Projects, skills and a README-style bio", Category: "engineering"},
	{ID: "studio", Name: "Studio", Description: "Full-bleed case studies", Category: "design", Premium: true},
}

var plans = []api.Plan{
	{ID: "free", Name: "Free", PriceCents: 0, Interval: "month", Features: []string{"1 portfolio", "basic templates"}},
	{ID: "pro", Name: "Pro", PriceCents: 900, Interval: "month", Features: []string{"premium templates", "custom domain", "analytics"}},
	{ID: "pro-annual", Name: "Pro (annual)", PriceCents: 9000, Interval: "year", Features: []string{"premium templates", "custom domain", "analytics"}},
}

func templateByID(id string) (api.Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return api.Template{}, false
}

func planByID(id string) (api.Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return api.Plan{}, false
}
