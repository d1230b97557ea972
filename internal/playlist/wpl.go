package playlist

import (
	"encoding/xml"
	"io"
	"strconv"

	"media-catalog/internal/catalog"
)

// wplGenerator is written to the Generator meta element.
const wplGenerator = "media-catalog"

// WPL structure based on Windows Media Player playlist format
type WPL struct {
	XMLName xml.Name `xml:"smil"`
	Head    WPLHead  `xml:"head"`
	Body    WPLBody  `xml:"body"`
}

type WPLHead struct {
	Meta  []WPLMeta `xml:"meta"`
	Title string    `xml:"title"`
}

type WPLMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type WPLBody struct {
	Seq WPLSeq `xml:"seq"`
}

type WPLSeq struct {
	Media []WPLMedia `xml:"media"`
}

type WPLMedia struct {
	Src string `xml:"src,attr"`
}

// SourceFunc returns the src written for one playlist entry. Returning an
// error skips the entry.
type SourceFunc func(entry catalog.ContentEntry) (string, error)

// Skipped is an entry left out of an export.
type Skipped struct {
	Entry catalog.ContentEntry
	Err   error
}

// Build converts pl into a WPL document in entry order. Entries whose
// source cannot be resolved are left out and returned.
func Build(pl catalog.Playlist, src SourceFunc) (*WPL, []Skipped) {
	doc := &WPL{
		Head: WPLHead{Title: pl.Name},
	}

	var skipped []Skipped
	for _, entry := range pl.Content {
		s, err := src(entry)
		if err != nil {
			skipped = append(skipped, Skipped{Entry: entry, Err: err})
			continue
		}
		doc.Body.Seq.Media = append(doc.Body.Seq.Media, WPLMedia{Src: s})
	}

	doc.Head.Meta = []WPLMeta{
		{Name: "Generator", Content: wplGenerator},
		{Name: "ItemCount", Content: strconv.Itoa(len(doc.Body.Seq.Media))},
	}
	return doc, skipped
}

// Encode writes doc with the processing instruction WPL readers expect.
func Encode(w io.Writer, doc *WPL) error {
	if _, err := io.WriteString(w, "<?wpl version=\"1.0\"?>\n"); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Decode reads a WPL document. The leading processing instruction is
// optional.
func Decode(r io.Reader) (*WPL, error) {
	var doc WPL
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
