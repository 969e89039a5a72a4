package httpmsg

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Version is the protocol version written on every status line.
const Version = "HTTP/1.1"

// Content types set by the body helpers.
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain; charset=utf-8"
)

// Response is one outgoing message under construction.
type Response struct {
	Headers *Headers

	status   int
	message  string
	body     []byte
	streamed bool
}

// NewResponse returns a 200 response with no headers and no body.
func NewResponse() *Response {
	return &Response{Headers: NewHeaders(), status: StatusOK}
}

// NewResponseWithStatus returns an empty response with the given code.
func NewResponseWithStatus(code int) *Response {
	r := NewResponse()
	r.SetStatus(code)
	return r
}

// SetStatus sets the code; the reason phrase comes from the status table.
func (r *Response) SetStatus(code int) {
	r.status = code
	r.message = ""
}

// SetStatusMessage sets the code with a custom reason phrase.
func (r *Response) SetStatusMessage(code int, message string) {
	r.status = code
	r.message = message
}

// Status returns the status code.
func (r *Response) Status() int {
	return r.status
}

// StatusMessage returns the reason phrase that will be written.
func (r *Response) StatusMessage() string {
	if r.message != "" {
		return r.message
	}
	return StatusText(r.status)
}

// SetBody stores body and sets Content-Length to its byte length.
func (r *Response) SetBody(body []byte) {
	r.body = body
	r.Headers.SetContentLength(int64(len(body)))
}

// SetTextBody sets a plain text body.
func (r *Response) SetTextBody(text string) {
	r.SetBody([]byte(text))
	r.Headers.SetContentType(ContentTypeText)
}

// SetHTMLBody sets an HTML body.
func (r *Response) SetHTMLBody(html string) {
	r.SetBody([]byte(html))
	r.Headers.SetContentType(ContentTypeHTML)
}

// SetJSONBody marshals v and sets it as a JSON body.
func (r *Response) SetJSONBody(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json body: %w", err)
	}
	r.SetBody(data)
	r.Headers.SetContentType(ContentTypeJSON)
	return nil
}

// Body returns the body bytes.
func (r *Response) Body() []byte {
	return r.body
}

// MarkStreamed records that the response was written directly to the
// connection so the connection layer must not serialize it again.
func (r *Response) MarkStreamed() {
	r.streamed = true
}

// Streamed reports whether MarkStreamed was called.
func (r *Response) Streamed() bool {
	return r.streamed
}

func (r *Response) appendHead(b []byte) []byte {
	b = append(b, Version...)
	b = append(b, ' ')
	b = strconv.AppendInt(b, int64(r.status), 10)
	b = append(b, ' ')
	b = append(b, r.StatusMessage()...)
	b = append(b, "\r\n"...)
	b = r.Headers.appendTo(b)
	return append(b, "\r\n"...)
}

// HeaderBytes returns the status line and header block, including the
// blank line, without the body.
func (r *Response) HeaderBytes() []byte {
	return r.appendHead(nil)
}

// Serialize renders the full message. The output depends only on status,
// headers and body.
func (r *Response) Serialize() []byte {
	b := r.appendHead(make([]byte, 0, 256+len(r.body)))
	return append(b, r.body...)
}
