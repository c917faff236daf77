package poster

// DefaultPlaceholder is rendered for movies without a poster.
const DefaultPlaceholder = "https://via.placeholder.com/150?text=No+Poster"

// Poster is either a found image URL or absent.
type Poster struct {
	url   string
	found bool
}

// Found creates a poster with an image URL.
func Found(url string) Poster { return Poster{url: url, found: true} }

// Missing creates an absent poster.
func Missing() Poster { return Poster{} }

// URL returns the image URL and whether one was found.
func (p Poster) URL() (string, bool) { return p.url, p.found }

// IsFound reports whether the poster has an image URL.
func (p Poster) IsFound() bool { return p.found }

// Or returns the image URL, or placeholder when absent.
func (p Poster) Or(placeholder string) string {
	if p.found {
		return p.url
	}
	return placeholder
}
