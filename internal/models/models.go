package models

// Positions are the grid slots images are shown in, in upload order.
var Positions = []string{"top-left", "top-right", "bottom-left", "bottom-right"}

// ImageItem represents one image shown on the comparison page
type ImageItem struct {
	URL      string `json:"url"`
	Author   string `json:"author"`
	Position string `json:"position"` // "top-left", "top-right", "bottom-left", "bottom-right"
	Filename string `json:"filename"`
}

// DefaultImages are shown until something is uploaded.
var DefaultImages = []ImageItem{
	{
		URL:      "https://images.unsplash.com/photo-1674647325071-49a139b1f495",
		Author:   "Dmitry Bukhantsov",
		Position: "top-left",
		Filename: "winter_scene.jpg",
	},
	{
		URL:      "https://images.unsplash.com/photo-1674647812339-dbcf20a9d268",
		Author:   "Dmitry Bukhantsov",
		Position: "top-right",
		Filename: "snowy_landscape.jpg",
	},
	{
		URL:      "https://images.unsplash.com/photo-1626238247302-2f3065c90ff5",
		Author:   "Fareed Akhyear Chowdhury",
		Position: "bottom-left",
		Filename: "summer_beach.jpg",
	},
	{
		URL:      "https://images.unsplash.com/photo-1731534679636-86d1d0c64198",
		Author:   "Atif Haiqal",
		Position: "bottom-right",
		Filename: "sunset_view.jpg",
	},
}

// UploadedImages describes stored upload filenames, served under urlPrefix.
func UploadedImages(urlPrefix string, filenames []string) []ImageItem {
	items := make([]ImageItem, 0, len(filenames))
	for i, name := range filenames {
		if i >= len(Positions) {
			break
		}
		items = append(items, ImageItem{
			URL:      urlPrefix + name,
			Author:   "User Upload",
			Position: Positions[i],
			Filename: name,
		})
	}
	return items
}
