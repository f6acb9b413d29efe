package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/kbukum/anyhttp/core"
)

// Default content types applied when the caller sets none.
const (
	contentTypeJSON   = "application/json"
	contentTypeForm   = "application/x-www-form-urlencoded"
	contentTypeBinary = "application/octet-stream"
	contentTypeText   = "text/plain; charset=utf-8"
)

// encodeBody serializes b and returns the reader plus the default content
// type for its kind. A BodyNone yields a nil reader.
func encodeBody(b core.Body) (io.Reader, string, error) {
	switch b.Kind {
	case core.BodyNone:
		return nil, "", nil
	case core.BodyJSON:
		data, err := json.Marshal(b.Value)
		if err != nil {
			return nil, "", fmt.Errorf("encode json body: %w", err)
		}
		return bytes.NewReader(data), contentTypeJSON, nil
	case core.BodyForm:
		switch p := b.Value.(type) {
		case core.Params:
			return strings.NewReader(p.Encode()), contentTypeForm, nil
		case *core.Params:
			return strings.NewReader(p.Encode()), contentTypeForm, nil
		}
	case core.BodyMultipart:
		switch m := b.Value.(type) {
		case core.Multipart:
			return encodeMultipart(&m)
		case *core.Multipart:
			return encodeMultipart(m)
		}
	case core.BodyBinary:
		if data, ok := b.Value.([]byte); ok {
			return bytes.NewReader(data), contentTypeBinary, nil
		}
	case core.BodyStream:
		if r, ok := b.Value.(io.Reader); ok {
			return r, "", nil
		}
	case core.BodyText:
		if s, ok := b.Value.(string); ok {
			return strings.NewReader(s), contentTypeText, nil
		}
	default:
		return nil, "", fmt.Errorf("unsupported body kind %d", b.Kind)
	}
	return nil, "", fmt.Errorf("body kind %s cannot carry %T", b.Kind, b.Value)
}

// encodeMultipart builds the multipart body and returns the reader and
// content-type header. Fields are written before files, both in order.
func encodeMultipart(m *core.Multipart) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range m.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}

	for _, f := range m.Files {
		var part io.Writer
		var err error

		if f.ContentType != "" {
			header := make(textproto.MIMEHeader)
			header.Set("Content-Disposition",
				`form-data; name="`+escapeQuotes(f.FieldName)+`"; filename="`+escapeQuotes(f.FileName)+`"`)
			header.Set("Content-Type", f.ContentType)
			part, err = w.CreatePart(header)
		} else {
			part, err = w.CreateFormFile(f.FieldName, f.FileName)
		}
		if err != nil {
			return nil, "", err
		}

		switch {
		case f.Data != nil:
			_, err = part.Write(f.Data)
		case f.Reader != nil:
			_, err = io.Copy(part, f.Reader)
		}
		if err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
