// Package parser finds links in files.
//
// Every format shares one notion of a link: the text of the file (or of each
// string value for structured formats) is split by pkg/linkdetector and the
// link fragments become Links with a position in the file.
package parser

// LinkType describes where a link was found.
type LinkType string

const (
	// LinkTypeBare is a link written as plain text.
	LinkTypeBare LinkType = "bare"
	// LinkTypeInline is the destination of a Markdown [text](url) link.
	LinkTypeInline LinkType = "inline"
	// LinkTypeReference is the destination of a Markdown reference definition.
	LinkTypeReference LinkType = "reference"
	// LinkTypeImage is the source of a Markdown image.
	LinkTypeImage LinkType = "image"
	// LinkTypeAutolink is a Markdown <url> autolink.
	LinkTypeAutolink LinkType = "autolink"
	// LinkTypeHTML is the href or src of an HTML tag inside Markdown.
	LinkTypeHTML LinkType = "html"
	// LinkTypeValue is found in a string value of a structured file.
	LinkTypeValue LinkType = "value"
	// LinkTypeKey is found in a key of a structured file.
	LinkTypeKey LinkType = "key"
)

// Category groups link types for filtering.
type Category string

const (
	CategoryBare       Category = "bare"
	CategoryMarkup     Category = "markup"
	CategoryStructured Category = "structured"
)

// Category returns the group the link type belongs to.
func (t LinkType) Category() Category {
	switch t {
	case LinkTypeInline, LinkTypeReference, LinkTypeImage, LinkTypeAutolink, LinkTypeHTML:
		return CategoryMarkup
	case LinkTypeValue, LinkTypeKey:
		return CategoryStructured
	default:
		return CategoryBare
	}
}

// Link is a link found in a file.
type Link struct {
	URL      string   // The link as the detector matched it
	FilePath string   // File it was found in
	Text     string   // Link text, alt text, or structural path such as "a.b[2]"
	Type     LinkType // How the link was written
	Line     int      // 1-based line
	Column   int      // 1-based byte column
	Offset   int      // Byte offset of the first character in the file
}

// End returns the byte offset just past the link in its file.
func (l Link) End() int {
	return l.Offset + len(l.URL)
}
