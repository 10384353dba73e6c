package transport

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"catalog-admin/internal/model"

	"github.com/bytedance/sonic"
)

// Encoding tags how a Payload goes over the wire.
type Encoding int

const (
	EncodingNone Encoding = iota
	EncodingJSON
	EncodingMultipart
)

func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"
	case EncodingMultipart:
		return "multipart"
	default:
		return "none"
	}
}

// MethodOverrideField carries the intended verb inside multipart bodies that
// have to travel as POST.
const MethodOverrideField = "_method"

type Field struct {
	Key   string
	Value any
}

// Payload is a request body. A payload with a file is always multipart and a
// payload without one is always JSON; there is no way to build the other two
// combinations.
type Payload struct {
	enc       Encoding
	fields    []Field
	fileField string
	file      *model.Attachment
}

// Empty is a bodyless payload (GET, DELETE).
func Empty() Payload { return Payload{enc: EncodingNone} }

// JSON builds an all-text payload.
func JSON(fields ...Field) Payload {
	return Payload{enc: EncodingJSON, fields: append([]Field(nil), fields...)}
}

// Auto picks the encoding from the presence of a file: multipart when file is
// non-nil, JSON otherwise.
func Auto(fileField string, file *model.Attachment, fields ...Field) Payload {
	if file == nil {
		return JSON(fields...)
	}
	return Payload{
		enc:       EncodingMultipart,
		fields:    append([]Field(nil), fields...),
		fileField: fileField,
		file:      file,
	}
}

func (p Payload) Encoding() Encoding { return p.enc }

func (p Payload) HasFile() bool { return p.file != nil }

func (p Payload) Fields() []Field { return append([]Field(nil), p.fields...) }

// Value returns the last value set for key.
func (p Payload) Value(key string) (any, bool) {
	for i := len(p.fields) - 1; i >= 0; i-- {
		if p.fields[i].Key == key {
			return p.fields[i].Value, true
		}
	}
	return nil, false
}

// With returns a copy of p with key set, replacing any earlier value.
func (p Payload) With(key string, value any) Payload {
	out := p
	out.fields = make([]Field, 0, len(p.fields)+1)
	for _, f := range p.fields {
		if f.Key != key {
			out.fields = append(out.fields, f)
		}
	}
	out.fields = append(out.fields, Field{Key: key, Value: value})
	if out.enc == EncodingNone {
		out.enc = EncodingJSON
	}
	return out
}

func (p Payload) encode() (io.Reader, string, error) {
	switch p.enc {
	case EncodingJSON:
		obj := make(map[string]any, len(p.fields))
		for _, f := range p.fields {
			obj[f.Key] = f.Value
		}
		b, err := sonic.Marshal(obj)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(b), "application/json", nil
	case EncodingMultipart:
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for _, f := range p.fields {
			if err := mw.WriteField(f.Key, model.Stringify(f.Value)); err != nil {
				return nil, "", err
			}
		}
		if err := writeFilePart(mw, p.fileField, p.file); err != nil {
			return nil, "", err
		}
		if err := mw.Close(); err != nil {
			return nil, "", err
		}
		// The boundary lives in this content type; it is the only one a
		// multipart body ever gets.
		return &buf, mw.FormDataContentType(), nil
	default:
		return nil, "", nil
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFilePart(mw *multipart.Writer, field string, file *model.Attachment) error {
	if field == "" {
		field = "image"
	}
	name := file.Filename
	if name == "" {
		name = "upload"
	}
	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+quoteEscaper.Replace(field)+`"; filename="`+quoteEscaper.Replace(name)+`"`)
	h.Set("Content-Type", ct)
	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = w.Write(file.Data)
	return err
}
