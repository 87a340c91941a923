package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/ginjaninja78/sas7bdat-converter/internal/dataset"
)

// =============================================================================
// XML OUTPUT
// =============================================================================
//
// XML STRUCTURE:
//
//   <?xml version="1.0" encoding="UTF-8"?>
//   <data>                       <!-- XMLRootElement -->
//     <row>                      <!-- XMLRowElement, one per record -->
//       <NAME>Alfred</NAME>
//       <AGE>14</AGE>
//       <BORN/>                  <!-- missing value -->
//     </row>
//   </data>
//
// Column names that are not valid XML names are rewritten by elementName.
//
// =============================================================================

const xmlIndent = "  "

func writeXML(w io.Writer, table *dataset.Table, opts Options) error {
	root := elementName(orDefault(opts.XMLRootElement, "data"))
	rowName := elementName(orDefault(opts.XMLRowElement, "row"))

	names := make([]string, len(table.Columns))
	for j, col := range table.Columns {
		names[j] = elementName(col.Name)
	}

	buffer := bufio.NewWriter(w)
	buffer.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(buffer, "<%s>\n", root)

	for row := 0; row < table.Rows; row++ {
		fmt.Fprintf(buffer, "%s<%s>\n", xmlIndent, rowName)
		for j, col := range table.Columns {
			value, _ := opts.FormatCell(col, row)
			writeElement(buffer, names[j], value, 2)
		}
		fmt.Fprintf(buffer, "%s</%s>\n", xmlIndent, rowName)
	}

	fmt.Fprintf(buffer, "</%s>\n", root)
	return buffer.Flush()
}

// writeElement writes a leaf element with indentation. An empty value is
// written as a self-closing tag.
func writeElement(buffer *bufio.Writer, name, value string, level int) {
	buffer.WriteString(strings.Repeat(xmlIndent, level))
	buffer.WriteString("<")
	buffer.WriteString(name)

	if value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")
	buffer.WriteString(escapeXML(value))
	buffer.WriteString("</")
	buffer.WriteString(name)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML and drops characters XML 1.0
// cannot represent.
func escapeXML(s string) string {
	var buffer strings.Builder

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			if isXMLChar(r) {
				buffer.WriteRune(r)
			}
		}
	}

	return buffer.String()
}

func isXMLChar(r rune) bool {
	return r == '\t' || r == '\n' || r == '\r' ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}

// elementName turns an arbitrary column name into a valid XML element name.
//
// RULES:
//   - letters, digits, '_', '-' and '.' are kept
//   - every other character becomes '_'
//   - a name that does not start with a letter or '_' gets a '_' prefix
//   - an empty name becomes "_"
func elementName(name string) string {
	var buffer strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-', r == '.':
			buffer.WriteRune(r)
		default:
			buffer.WriteRune('_')
		}
	}

	out := buffer.String()
	if out == "" {
		return "_"
	}
	first := []rune(out)[0]
	if !unicode.IsLetter(first) && first != '_' {
		out = "_" + out
	}
	return out
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
