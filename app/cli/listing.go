package cli

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/width"

	"github.com/lysyi3m/blepo/app/video"
)

const dateLayout = "2006-01-02"

// WriteListing prints the numbered candidate list. Titles wider than
// maxTitleWidth terminal cells are shortened; zero disables truncation.
func WriteListing(w io.Writer, videos []video.Video, maxTitleWidth int) {
	if len(videos) == 0 {
		fmt.Fprintln(w, "No unwatched videos.")
		return
	}

	for i, v := range videos {
		fmt.Fprintf(w, "%3d. [%s] %s — %s\n",
			i+1,
			v.Published.Local().Format(dateLayout),
			v.ChannelName,
			TruncateTitle(v.Title, maxTitleWidth))
	}
}

// TruncateTitle cuts s to at most maxWidth display cells, counting wide
// East Asian runes as two cells, and appends an ellipsis when cut.
func TruncateTitle(s string, maxWidth int) string {
	if maxWidth <= 0 || cellWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}

	var b strings.Builder
	used := 0
	for _, r := range s {
		w := runeWidth(r)
		if used+w > maxWidth-1 {
			break
		}
		b.WriteRune(r)
		used += w
	}
	b.WriteString("…")
	return b.String()
}

func cellWidth(s string) int {
	n := 0
	for _, r := range s {
		n += runeWidth(r)
	}
	return n
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}
