package httpmsg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
)

func TestResponse_SerializeLayout(t *testing.T) {
	res := httpmsg.NewResponse()
	res.Headers.Set("X-First", "1")
	res.SetTextBody("hello")

	want := "HTTP/1.1 200 OK\r\n" +
		"x-first: 1\r\n" +
		"content-length: 5\r\n" +
		"content-type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"hello"
	assert.Equal(t, want, string(res.Serialize()))
}

func TestResponse_SerializeIsPure(t *testing.T) {
	build := func() *httpmsg.Response {
		r := httpmsg.NewResponseWithStatus(httpmsg.StatusCreated)
		r.Headers.Set("ETag", `"abc"`)
		r.SetHTMLBody("<p>x</p>")
		return r
	}

	a, b := build(), build()
	assert.Equal(t, a.Serialize(), b.Serialize())
	assert.Equal(t, a.Serialize(), a.Serialize())
}

func TestResponse_ContentLengthCountsBytes(t *testing.T) {
	res := httpmsg.NewResponse()
	res.SetTextBody("héllo, 世界")

	n, ok := res.Headers.ContentLength()
	require.True(t, ok)
	assert.Equal(t, int64(len("héllo, 世界")), n)
	assert.Equal(t, int64(14), n)
}

func TestResponse_SetBodyRecomputesLength(t *testing.T) {
	res := httpmsg.NewResponse()
	res.SetBody([]byte("long body"))
	res.SetBody([]byte("ab"))

	assert.Equal(t, "2", res.Headers.Value("Content-Length"))
	assert.Equal(t, 1, countOccurrences(res.Headers.Names(), "content-length"))
}

func TestResponse_StatusMessages(t *testing.T) {
	res := httpmsg.NewResponse()

	res.SetStatus(httpmsg.StatusNotFound)
	assert.Equal(t, "Not Found", res.StatusMessage())

	res.SetStatus(599)
	assert.Equal(t, httpmsg.UnknownStatusText, res.StatusMessage())
	assert.Contains(t, string(res.Serialize()), "HTTP/1.1 599 Unknown Status\r\n")

	res.SetStatusMessage(200, "Fine")
	assert.Equal(t, "Fine", res.StatusMessage())
}

func TestResponse_HeaderBytesExcludesBody(t *testing.T) {
	res := httpmsg.NewResponse()
	res.Headers.SetContentLength(1000)

	assert.Equal(t, "HTTP/1.1 200 OK\r\ncontent-length: 1000\r\n\r\n", string(res.HeaderBytes()))
	assert.False(t, res.Streamed())
	res.MarkStreamed()
	assert.True(t, res.Streamed())
}

func TestResponse_JSONBody(t *testing.T) {
	res := httpmsg.NewResponse()
	require.NoError(t, res.SetJSONBody(map[string]string{"status": "running"}))

	assert.Equal(t, `{"status":"running"}`, string(res.Body()))
	assert.Equal(t, httpmsg.ContentTypeJSON, res.Headers.ContentType())

	err := res.SetJSONBody(make(chan int))
	assert.Error(t, err)
}

func TestMIMEType(t *testing.T) {
	assert.Equal(t, "text/html", httpmsg.MIMEType("/public/index.HTML"))
	assert.Equal(t, "text/css", httpmsg.MIMEType("a/b/site.css"))
	assert.Equal(t, httpmsg.DefaultMIMEType, httpmsg.MIMEType("/bin/blob"))
	assert.Equal(t, "image/png", httpmsg.DetectMIMEType("logo.png", nil))
	assert.Contains(t, httpmsg.DetectMIMEType("README", []byte("plain words here\n")), "text/plain")
}

func countOccurrences(names []string, name string) int {
	n := 0
	for _, s := range names {
		if s == name {
			n++
		}
	}
	return n
}
