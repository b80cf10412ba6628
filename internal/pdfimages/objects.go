package pdfimages

import (
	"bytes"
	"regexp"
	"strconv"
)

// object is one indirect PDF object: its raw dictionary text plus stream
// payload when present. Dictionaries are kept as raw bytes and queried
// with targeted patterns; image recovery only needs a handful of keys.
type object struct {
	num    int
	dict   string
	stream []byte
}

var (
	reObjHeader = regexp.MustCompile(`(?s)(\d+)\s+(\d+)\s+obj\b`)
	reRef       = regexp.MustCompile(`(\d+)\s+0\s+R`)
	reFilter    = regexp.MustCompile(`/Filter\s*(\[[^\]]*\]|/[A-Za-z0-9]+)`)
	reName      = regexp.MustCompile(`/[A-Za-z0-9]+`)
)

// scanObjects walks the byte stream for "N G obj … endobj" blocks in
// document order. It deliberately ignores the cross-reference table:
// scanned customs PDFs frequently carry broken xref offsets, and a linear
// scan still finds every conventional (non-object-stream) object.
func scanObjects(data []byte) []object {
	var objects []object
	locs := reObjHeader.FindAllSubmatchIndex(data, -1)
	for i, loc := range locs {
		num, err := strconv.Atoi(string(data[loc[2]:loc[3]]))
		if err != nil {
			continue
		}
		bodyStart := loc[1]
		bodyEnd := len(data)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		if end := bytes.Index(data[bodyStart:bodyEnd], []byte("endobj")); end >= 0 {
			bodyEnd = bodyStart + end
		}
		body := data[bodyStart:bodyEnd]

		dict := extractDict(body)
		stream := extractStream(body)
		objects = append(objects, object{num: num, dict: string(dict), stream: stream})
	}
	return objects
}

// extractDict returns the outermost << … >> run of body, honoring nesting.
func extractDict(body []byte) []byte {
	start := bytes.Index(body, []byte("<<"))
	if start < 0 {
		return nil
	}
	depth := 0
	for i := start; i+1 < len(body); i++ {
		switch {
		case body[i] == '<' && body[i+1] == '<':
			depth++
			i++
		case body[i] == '>' && body[i+1] == '>':
			depth--
			i++
			if depth == 0 {
				return body[start : i+1]
			}
		}
	}
	return nil
}

// extractStream returns the raw bytes between the stream and endstream
// keywords, trimming the single EOL the syntax requires after "stream".
func extractStream(body []byte) []byte {
	start := bytes.Index(body, []byte("stream"))
	if start < 0 {
		return nil
	}
	start += len("stream")
	if start < len(body) && body[start] == '\r' {
		start++
	}
	if start < len(body) && body[start] == '\n' {
		start++
	}
	end := bytes.LastIndex(body, []byte("endstream"))
	if end <= start {
		return nil
	}
	payload := body[start:end]
	// producers commonly emit an EOL before endstream that is not payload
	payload = bytes.TrimSuffix(payload, []byte("\n"))
	payload = bytes.TrimSuffix(payload, []byte("\r"))
	return payload
}

// dictName returns the name value for key, e.g. dictName(d, "Subtype") -> "Image".
func dictName(dict, key string) string {
	re := regexp.MustCompile(`/` + key + `\s*/([A-Za-z0-9]+)`)
	if m := re.FindStringSubmatch(dict); m != nil {
		return m[1]
	}
	return ""
}

// dictInt returns the integer value for key, or -1 when absent.
func dictInt(dict, key string) int {
	re := regexp.MustCompile(`/` + key + `\s+(\d+)`)
	if m := re.FindStringSubmatch(dict); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return v
		}
	}
	return -1
}

// dictFilters returns the filter names applied to a stream, in order.
func dictFilters(dict string) []string {
	m := reFilter.FindStringSubmatch(dict)
	if m == nil {
		return nil
	}
	var filters []string
	for _, name := range reName.FindAllString(m[1], -1) {
		filters = append(filters, name[1:])
	}
	return filters
}

// isPageDict reports whether dict describes a single page (not the /Pages tree node).
func isPageDict(dict string) bool {
	return dictName(dict, "Type") == "Page"
}

// isImageDict reports whether dict describes a raster image XObject.
func isImageDict(dict string) bool {
	return dictName(dict, "Subtype") == "Image"
}

// xobjectRefs returns the object numbers referenced from the page's
// /Resources /XObject table, in their order of appearance. resolve maps an
// object number to its dictionary for indirect /Resources entries.
func xobjectRefs(pageDict string, resolve func(num int) string) []int {
	resources := pageDict
	// /Resources may be an indirect reference rather than an inline dict.
	if m := regexp.MustCompile(`/Resources\s+(\d+)\s+0\s+R`).FindStringSubmatch(pageDict); m != nil {
		if num, err := strconv.Atoi(m[1]); err == nil {
			resources = resolve(num)
		}
	}
	xoStart := regexp.MustCompile(`/XObject\s*<<`).FindStringIndex(resources)
	if xoStart == nil {
		return nil
	}
	table := extractDict([]byte(resources[xoStart[1]-2:]))
	if table == nil {
		return nil
	}
	var refs []int
	for _, m := range reRef.FindAllSubmatch(table, -1) {
		if num, err := strconv.Atoi(string(m[1])); err == nil {
			refs = append(refs, num)
		}
	}
	return refs
}
