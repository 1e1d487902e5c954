package mapoptions

import "strings"

// ClusterStyle describes one size tier of a cluster icon preset.
type ClusterStyle struct {
	URL       string `json:"url"`
	Height    int    `json:"height"`
	Width     int    `json:"width"`
	Anchor    [2]int `json:"anchor"`
	TextColor string `json:"textColor,omitempty"`
	TextSize  int    `json:"textSize"`
}

const (
	ClusterStyleDefault      = "default"
	ClusterStylePeople       = "people"
	ClusterStyleConversation = "conversation"
	ClusterStyleHearts       = "hearts"

	clusterImagePath = "includes/marker-clusterer/images/"
)

// ClusterStyleNames lists the accepted cluster style names. "default" keeps
// the clusterer's stock icons.
func ClusterStyleNames() []string {
	return []string{ClusterStyleDefault, ClusterStylePeople, ClusterStyleConversation, ClusterStyleHearts}
}

// ClusterStyles returns the named presets with image URLs resolved against base.
func ClusterStyles(base string) map[string][]ClusterStyle {
	image := func(name string) string {
		return joinURL(base, clusterImagePath+name)
	}
	return map[string][]ClusterStyle{
		ClusterStylePeople: {
			{URL: image("people35.png"), Height: 35, Width: 35, Anchor: [2]int{16, 0}, TextColor: "#ff00ff", TextSize: 10},
			{URL: image("people45.png"), Height: 45, Width: 45, Anchor: [2]int{24, 0}, TextColor: "#ff0000", TextSize: 11},
			{URL: image("people55.png"), Height: 55, Width: 55, Anchor: [2]int{32, 0}, TextColor: "#ffffff", TextSize: 12},
		},
		ClusterStyleConversation: {
			{URL: image("conv30.png"), Height: 27, Width: 30, Anchor: [2]int{3, 0}, TextColor: "#ff00ff", TextSize: 10},
			{URL: image("conv40.png"), Height: 36, Width: 40, Anchor: [2]int{6, 0}, TextColor: "#ff0000", TextSize: 11},
			{URL: image("conv50.png"), Height: 50, Width: 45, Anchor: [2]int{8, 0}, TextSize: 12},
		},
		ClusterStyleHearts: {
			{URL: image("heart30.png"), Height: 26, Width: 30, Anchor: [2]int{4, 0}, TextColor: "#ff00ff", TextSize: 10},
			{URL: image("heart40.png"), Height: 35, Width: 40, Anchor: [2]int{8, 0}, TextColor: "#ff0000", TextSize: 11},
			{URL: image("heart50.png"), Height: 50, Width: 44, Anchor: [2]int{12, 0}, TextSize: 12},
		},
	}
}

func joinURL(base, path string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return path
	}
	return base + "/" + strings.TrimLeft(path, "/")
}

// AssetURL resolves a plugin asset path against base.
func AssetURL(base, path string) string {
	return joinURL(base, path)
}
