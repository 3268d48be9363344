package entity

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Locator addresses an element by CSS selector (or XPath when it starts with
// "/" or "xpath="), optionally narrowed to matches whose text contains Text.
type Locator struct {
	CSS  string `yaml:"css"`
	Text string `yaml:"text,omitempty"`
}

// UnmarshalYAML also accepts a bare scalar as a CSS-only locator.
func (l *Locator) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*l = Locator{CSS: node.Value}
		return nil
	}
	type plain Locator
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*l = Locator(p)
	return nil
}

func (l Locator) String() string {
	if l.Text == "" {
		return l.CSS
	}
	return fmt.Sprintf("%s /%s/", l.CSS, l.Text)
}

// Frame is a captured page image. Data holds the encoded file, Luma the 8-bit
// luminance of a small thumbnail of it in row-major order.
type Frame struct {
	Data   []byte
	Luma   []byte
	Format string
	Width  int
	Height int
}

// Recording is a page video stored as a Motion JPEG stream: the captured
// JPEG frames written back to back.
type Recording struct {
	Data   []byte
	Frames int
}
