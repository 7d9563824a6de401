package server

import (
	"context"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

// navMenu renders the main navigation, marking the entry for active
func navMenu(active string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<ul>"); err != nil {
			return err
		}
		for _, item := range navigation {
			class := ""
			if item.Key == active {
				class = ` class="active"`
			}
			_, err := fmt.Fprintf(w, `<li><a href="%s"%s>%s</a></li>`,
				templ.EscapeString(item.Href), class, templ.EscapeString(item.Label))
			if err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ul>")
		return err
	})
}

// navHTML renders navMenu for use inside the page templates
func navHTML(active string) (template.HTML, error) {
	return templ.ToGoHTML(context.Background(), navMenu(active))
}
