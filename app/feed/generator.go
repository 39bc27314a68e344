package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/lysyi3m/blepo/app/video"
)

// ChannelInfo describes the generated feed itself.
type ChannelInfo struct {
	Title       string
	Link        string
	SelfLink    string
	Description string
	Version     string
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders videos as an RSS 2.0 document in the given order.
func (g *Generator) Run(info ChannelInfo, videos []video.Video) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", cmp.Or(info.Title, "blepo"), 4)
	g.writeElement(&buf, "link", cmp.Or(info.Link, "https://www.youtube.com"), 4)
	g.writeElement(&buf, "description", cmp.Or(info.Description, "Unwatched videos from subscribed channels"), 4)

	if info.SelfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(info.SelfLink)))
	}

	lastBuildDate := time.Now().In(time.Local)
	if len(videos) > 0 {
		lastBuildDate = videos[0].Published.In(time.Local)
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("blepo/%s", cmp.Or(info.Version, "dev")), 4)

	for _, v := range videos {
		g.writeItem(&buf, v)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, v video.Video) {
	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(guidPrefix+v.ID.String()))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", v.Title, 6)
	g.writeElement(buf, "link", v.URL, 6)
	g.writeElement(buf, "description", fmt.Sprintf("New video from %s", v.ChannelName), 6)
	g.writeElement(buf, "pubDate", v.Published.In(time.Local).Format(time.RFC1123Z), 6)
	g.writeElement(buf, "category", v.ChannelName, 6)

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
