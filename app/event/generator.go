package event

import (
	"bytes"
	"cmp"
	"crypto/sha256"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/lysyi3m/event-comb/app/cfg"
	"github.com/lysyi3m/event-comb/app/database"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders the stored events of a provider as an RSS 2.0 channel.
func (g *Generator) Run(provider database.Provider, events []database.Event) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	selfLink := providerURL(provider.Name, "feed")

	g.writeElement(&buf, "title", fmt.Sprintf("%s events", provider.Name), 4)
	g.writeElement(&buf, "link", providerURL(provider.Name, "events"), 4)
	g.writeElement(&buf, "description", fmt.Sprintf("Upcoming events collected from %s", provider.Type), 4)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	lastBuildDate := time.Now().In(time.Local)
	if provider.LastCollectedAt != nil {
		lastBuildDate = *provider.LastCollectedAt
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Event-Comb/%s", cfg.Get().Version), 4)

	for _, ev := range events {
		g.writeItem(&buf, ev)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, ev database.Event) {
	buf.WriteString("    <item>\n")

	guid := cmp.Or(ev.Link, ev.ContentHash)
	if guid != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(guid)))
		xml.EscapeText(buf, []byte(guid))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", ev.Title, 6)
	g.writeElement(buf, "link", ev.Link, 6)
	g.writeElement(buf, "description", cmp.Or(ev.Description, "No description available"), 6)
	g.writeElement(buf, "pubDate", time.UnixMilli(ev.Date).In(time.Local).Format(time.RFC1123Z), 6)
	g.writeElement(buf, "category", ev.City, 6)
	if ev.Free {
		g.writeElement(buf, "category", "free", 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return (len(s) > 7 && s[:7] == "http://") || (len(s) > 8 && s[:8] == "https://")
}

func providerURL(name, resource string) string {
	if cfg.Get().BaseUrl != "" {
		return fmt.Sprintf("%s/providers/%s/%s", cfg.Get().BaseUrl, name, resource)
	}
	return fmt.Sprintf("http://localhost:%s/providers/%s/%s", cfg.Get().Port, name, resource)
}

// ContentHash identifies an event across collections.
func ContentHash(ev Event) string {
	content := fmt.Sprintf("%s|%s|%d", ev.Title, ev.Link, ev.Date)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(content)))
}
