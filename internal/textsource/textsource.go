// Package textsource reads contract text that an upstream extractor has
// already produced. Plain text and Markdown are read as-is; HTML is reduced
// to its visible text with goquery.
package textsource

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoText is returned when a source yields no usable text.
var ErrNoText = errors.New("textsource: no text extracted")

// ErrUnsupportedFormat is returned for file extensions that are not read.
var ErrUnsupportedFormat = errors.New("textsource: unsupported format")

// Format is an input document format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// FormatOf maps a file extension to its format.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", "":
		return FormatText, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadFile reads the contract text stored at path.
func ReadFile(path string) (string, error) {
	format, err := FormatOf(path)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("textsource: open %s: %w", path, err)
	}
	defer f.Close()

	text, err := Read(f, format)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}

// Read returns the text of r interpreted as format. Blank input yields ErrNoText.
func Read(r io.Reader, format Format) (string, error) {
	var text string
	switch format {
	case FormatHTML:
		t, err := htmlText(r)
		if err != nil {
			return "", err
		}
		text = t
	default:
		raw, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("textsource: read: %w", err)
		}
		text = string(bytes.TrimPrefix(raw, []byte("\uFEFF")))
	}

	text = normalize(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// blockElements end a line of visible text.
const blockElements = "p, div, li, tr, h1, h2, h3, h4, h5, h6, section, article, blockquote, pre"

func htmlText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("textsource: parse html: %w", err)
	}
	doc.Find("script, style, noscript, head").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("td, th").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})
	doc.Find(blockElements).Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})
	return doc.Text(), nil
}

// normalize collapses runs of blanks inside each line, drops blank lines and
// trims the result.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
