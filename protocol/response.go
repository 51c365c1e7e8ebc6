// File: protocol/response.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// Response is an HTTP/1.1 response value. It is immutable once handed
// to a worker; WireBytes renders the exact byte sequence written to
// the socket.
type Response struct {
	Status  int
	Reason  string
	Headers map[string]string
	Body    []byte
}

// NewResponse builds a response with the canonical reason phrase for
// status and a copy of body.
func NewResponse(status int, body []byte) *Response {
	b := make([]byte, len(body))
	copy(b, body)
	return &Response{
		Status:  status,
		Reason:  StatusText(status),
		Headers: make(map[string]string),
		Body:    b,
	}
}

// SetHeader sets a response header, replacing any previous value.
func (r *Response) SetHeader(name, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[name] = value
}

// WireBytes renders the status line, headers and body. Content-Length
// is always emitted from the actual body size; header order is
// deterministic so the wire form is stable for a given response.
func (r *Response) WireBytes() []byte {
	var buf bytes.Buffer
	reason := r.Reason
	if reason == "" {
		reason = StatusText(r.Status)
	}
	fmt.Fprintf(&buf, "HTTP/1.1 %d %s\r\n", r.Status, reason)

	names := make([]string, 0, len(r.Headers))
	for name := range r.Headers {
		if name == "Content-Length" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		buf.WriteString(name)
		buf.WriteString(": ")
		buf.WriteString(r.Headers[name])
		buf.WriteString("\r\n")
	}
	buf.WriteString("Content-Length: ")
	buf.WriteString(strconv.Itoa(len(r.Body)))
	buf.WriteString("\r\n\r\n")
	buf.Write(r.Body)
	return buf.Bytes()
}

// StatusText returns the canonical reason phrase for the subset of
// status codes the server emits.
func StatusText(status int) string {
	switch status {
	case 200:
		return "OK"
	case 400:
		return "Bad Request"
	case 404:
		return "Not Found"
	case 500:
		return "Internal Server Error"
	case 501:
		return "Not Implemented"
	case 503:
		return "Service Unavailable"
	default:
		return "Unknown"
	}
}
