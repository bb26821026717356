package httptransport

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"

	"github.com/broady/catalystwan"
	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how much of each file is inspected to detect its type.
const sniffLen = 3072

// encodeMultipart writes the form fields and file parts of body. Parts
// are written in name order.
func encodeMultipart(body *catalystwan.PreparedBody) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if fields, ok := body.Body.(map[string]any); ok {
		for _, name := range sortedKeys(fields) {
			if err := w.WriteField(name, formValue(fields[name])); err != nil {
				return nil, "", err
			}
		}
	} else if body.Body != nil {
		return nil, "", fmt.Errorf("multipart body must be form fields, got %T", body.Body)
	}

	for _, name := range sortedKeys(body.Multipart) {
		part := body.Multipart[name]
		br := bufio.NewReaderSize(part.Content, sniffLen)
		head, err := br.Peek(sniffLen)
		if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
			return nil, "", fmt.Errorf("read %s: %w", part.Filename, err)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(name), escapeQuotes(part.Filename)))
		h.Set("Content-Type", mimetype.Detect(head).String())
		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(pw, br); err != nil {
			return nil, "", fmt.Errorf("write %s: %w", part.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// formValue renders a form field the way HTML forms encode them.
func formValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case bool:
		if v {
			return "True"
		}
		return "False"
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
