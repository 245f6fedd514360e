package catalog

const defaultFactionColor = "gray"

var factionColors = map[string]string{
	"anarch":             "orangered",
	"criminal":           "royalblue",
	"shaper":             "limegreen",
	"neutral-runner":     "gray",
	"haas-bioroid":       "blueviolet",
	"jinteki":            "crimson",
	"nbn":                "#ffc107",
	"weyland-consortium": "darkgreen",
	"neutral-corp":       "gray",
}

// FactionColor returns the display colour for a faction code, gray when the
// faction is unknown or empty.
func FactionColor(faction string) string {
	if c, ok := factionColors[faction]; ok {
		return c
	}
	return defaultFactionColor
}
