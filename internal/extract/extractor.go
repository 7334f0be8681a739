package extract

// Extractor turns raw page bytes into a Document.
// Implementations must be deterministic and free of side effects.
type Extractor interface {
	// Extract parses input; fallbackTitle is used when the page has no <h1>.
	Extract(input []byte, fallbackTitle string) Document
}

// CardExtractor scopes extraction to the first qualifying container, by
// default <section class="card">.
type CardExtractor struct {
	ContainerTag   string
	ContainerClass string
}

// Extract implements Extractor.
func (e CardExtractor) Extract(input []byte, fallbackTitle string) Document {
	return FromHTML(input, Options{
		ContainerTag:   e.ContainerTag,
		ContainerClass: e.ContainerClass,
		FallbackTitle:  fallbackTitle,
	})
}
