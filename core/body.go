package core

import "io"

// BodyKind declares how a request body is encoded.
type BodyKind int

const (
	// BodyNone means no body.
	BodyNone BodyKind = iota
	// BodyJSON encodes Value with encoding/json.
	BodyJSON
	// BodyForm encodes a Params value as application/x-www-form-urlencoded.
	BodyForm
	// BodyMultipart encodes a Multipart value as multipart/form-data.
	BodyMultipart
	// BodyBinary sends a []byte value as-is.
	BodyBinary
	// BodyStream sends an io.Reader value as-is.
	BodyStream
	// BodyText sends a string value as text/plain.
	BodyText
)

// String returns the kind name.
func (k BodyKind) String() string {
	switch k {
	case BodyNone:
		return "none"
	case BodyJSON:
		return "json"
	case BodyForm:
		return "form"
	case BodyMultipart:
		return "multipart"
	case BodyBinary:
		return "binary"
	case BodyStream:
		return "stream"
	case BodyText:
		return "text"
	default:
		return "unknown"
	}
}

// Body is a request body tagged with its encoding kind.
type Body struct {
	Kind  BodyKind
	Value any
}

// IsZero reports whether no body is set.
func (b Body) IsZero() bool { return b.Kind == BodyNone }

// JSONBody returns a body encoded as JSON.
func JSONBody(v any) Body { return Body{Kind: BodyJSON, Value: v} }

// FormBody returns a URL-encoded form body.
func FormBody(p Params) Body { return Body{Kind: BodyForm, Value: p} }

// MultipartBody returns a multipart/form-data body.
func MultipartBody(m Multipart) Body { return Body{Kind: BodyMultipart, Value: m} }

// BinaryBody returns a raw byte body.
func BinaryBody(b []byte) Body { return Body{Kind: BodyBinary, Value: b} }

// StreamBody returns a streaming body. It can be sent once.
func StreamBody(r io.Reader) Body { return Body{Kind: BodyStream, Value: r} }

// TextBody returns a plain text body.
func TextBody(s string) Body { return Body{Kind: BodyText, Value: s} }

// Multipart describes a multipart/form-data body.
type Multipart struct {
	// Fields are simple form fields, written in order.
	Fields []FormField
	// Files are file upload fields, written after Fields.
	Files []FileField
}

// FormField is a simple multipart form field.
type FormField struct {
	Name  string
	Value string
}

// FileField is a file to upload in a multipart body.
type FileField struct {
	// FieldName is the form field name (e.g., "file").
	FieldName string
	// FileName is the file name sent to the server.
	FileName string
	// ContentType is the part MIME type. Defaults to application/octet-stream.
	ContentType string
	// Data is the file content. Used if Reader is nil.
	Data []byte
	// Reader streams the content instead of Data.
	Reader io.Reader
}

func (b Body) view() any {
	switch b.Kind {
	case BodyNone:
		return nil
	case BodyStream:
		return "[Stream]"
	case BodyForm:
		if p, ok := b.Value.(Params); ok {
			return p.view()
		}
	case BodyMultipart:
		if m, ok := b.Value.(Multipart); ok {
			fields := make(map[string]any, len(m.Fields)+len(m.Files))
			for _, f := range m.Fields {
				fields[f.Name] = f.Value
			}
			for _, f := range m.Files {
				fields[f.FieldName] = "[File " + f.FileName + "]"
			}
			return fields
		}
	}
	return b.Value
}
