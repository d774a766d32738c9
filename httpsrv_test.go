/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * HTTP transport tests
 */

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"testing"

	"github.com/OpenPrinting/goipp"
)

// startTestServer runs a Server on an ephemeral loopback port
func startTestServer(t *testing.T) (*Dispatcher, *memSink, string) {
	t.Helper()

	dispatcher, _, sink := testDispatcher()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %s", err)
	}

	srv := NewServer(listener, dispatcher, dispatcher.printer)
	go srv.Serve()
	t.Cleanup(srv.Shutdown)

	return dispatcher, sink, listener.Addr().String()
}

// readTestResponse reads one HTTP response off the wire
func readTestResponse(t *testing.T, br *bufio.Reader) (int, textproto.MIMEHeader, []byte) {
	t.Helper()

	tp := textproto.NewReader(br)

	line, err := tp.ReadLine()
	if err != nil {
		t.Fatalf("response line: %s", err)
	}

	fields := strings.SplitN(line, " ", 3)
	if len(fields) < 2 {
		t.Fatalf("malformed response line %q", line)
	}

	status, err := strconv.Atoi(fields[1])
	if err != nil {
		t.Fatalf("malformed status in %q", line)
	}

	hdr, err := tp.ReadMIMEHeader()
	if err != nil {
		t.Fatalf("response headers: %s", err)
	}

	length, err := strconv.Atoi(hdr.Get("Content-Length"))
	if err != nil {
		t.Fatalf("missing content length")
	}

	body := make([]byte, length)
	if _, err = io.ReadFull(br, body); err != nil {
		t.Fatalf("response body: %s", err)
	}

	return status, hdr, body
}

// TestServerPrintJob submits a Print-Job with a well-behaved
// HTTP client and an independent IPP implementation
func TestServerPrintJob(t *testing.T) {
	_, sink, addr := startTestServer(t)

	req := goipp.NewRequest(goipp.DefaultVersion, goipp.OpPrintJob, 1)
	req.Operation.Add(goipp.MakeAttribute("attributes-charset",
		goipp.TagCharset, goipp.String("utf-8")))
	req.Operation.Add(goipp.MakeAttribute("attributes-natural-language",
		goipp.TagLanguage, goipp.String("en-us")))
	req.Operation.Add(goipp.MakeAttribute("printer-uri",
		goipp.TagURI, goipp.String("ipp://"+addr+"/"+IppResourcePath)))
	req.Operation.Add(goipp.MakeAttribute("document-format",
		goipp.TagMimeType, goipp.String("application/pdf")))
	req.Operation.Add(goipp.MakeAttribute("job-name",
		goipp.TagName, goipp.String("from http client")))

	data, err := req.EncodeBytes()
	if err != nil {
		t.Fatalf("goipp encode: %s", err)
	}

	doc := []byte("%PDF-1.4 http client document")
	data = append(data, doc...)

	httpRsp, err := http.Post("http://"+addr+"/"+IppResourcePath,
		IppContentType, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post: %s", err)
	}
	defer httpRsp.Body.Close()

	if httpRsp.StatusCode != 200 {
		t.Fatalf("http status: expected 200, present %d", httpRsp.StatusCode)
	}

	body, err := io.ReadAll(httpRsp.Body)
	if err != nil {
		t.Fatalf("response body: %s", err)
	}

	var rsp goipp.Message
	if err = rsp.DecodeBytes(body); err != nil {
		t.Fatalf("goipp decode: %s", err)
	}

	if goipp.Status(rsp.Code) != goipp.StatusOk {
		t.Fatalf("ipp status: expected ok, present %s", goipp.Status(rsp.Code))
	}

	sink.lock.Lock()
	saved := sink.docs[1]
	sink.lock.Unlock()

	if !bytes.Equal(saved, doc) {
		t.Errorf("document damaged: %q", saved)
	}
}

// TestServerRawFrame exercises the chunked raw-frame workaround:
// the client declares chunked encoding but sends a bare IPP
// message and half-closes the connection
func TestServerRawFrame(t *testing.T) {
	_, _, addr := startTestServer(t)

	msg := NewRequest(DefaultVersion, OpGetPrinterAttributes, 9)
	group := msg.AddGroup(TagOperationGroup)
	group.Add(MakeAttribute("attributes-charset", TagCharset, String("utf-8")))

	frame, err := msg.EncodeBytes()
	if err != nil {
		t.Fatalf("encode: %s", err)
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %s", err)
	}
	defer conn.Close()

	fmt.Fprintf(conn, "POST /%s HTTP/1.1\r\n", IppResourcePath)
	fmt.Fprintf(conn, "Host: %s\r\n", addr)
	fmt.Fprintf(conn, "Content-Type: %s\r\n", IppContentType)
	fmt.Fprintf(conn, "Transfer-Encoding: chunked\r\n")
	fmt.Fprintf(conn, "\r\n")
	conn.Write(frame)
	conn.(*net.TCPConn).CloseWrite()

	status, hdr, body := readTestResponse(t, bufio.NewReader(conn))

	if status != 200 {
		t.Fatalf("http status: expected 200, present %d", status)
	}

	if !strings.EqualFold(hdr.Get("Connection"), "close") {
		t.Errorf("raw-frame response must close the connection")
	}

	rsp, _, err := DecodeMessage(body)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}

	if Status(rsp.Code) != StatusOk {
		t.Errorf("ipp status: expected ok, present %s", Status(rsp.Code))
	}
	if rsp.RequestID != 9 {
		t.Errorf("request-id: expected 9, present %d", rsp.RequestID)
	}
}

// TestServerChunkedBody sends a properly chunked request
func TestServerChunkedBody(t *testing.T) {
	_, _, addr := startTestServer(t)

	msg := NewRequest(DefaultVersion, OpGetPrinterAttributes, 3)
	group := msg.AddGroup(TagOperationGroup)
	group.Add(MakeAttribute("attributes-charset", TagCharset, String("utf-8")))

	frame, err := msg.EncodeBytes()
	if err != nil {
		t.Fatalf("encode: %s", err)
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %s", err)
	}
	defer conn.Close()

	fmt.Fprintf(conn, "POST /%s HTTP/1.1\r\n", IppResourcePath)
	fmt.Fprintf(conn, "Host: %s\r\n", addr)
	fmt.Fprintf(conn, "Content-Type: %s\r\n", IppContentType)
	fmt.Fprintf(conn, "Transfer-Encoding: chunked\r\n")
	fmt.Fprintf(conn, "\r\n")

	// Two chunks, split mid-message
	half := len(frame) / 2
	fmt.Fprintf(conn, "%x\r\n", half)
	conn.Write(frame[:half])
	fmt.Fprintf(conn, "\r\n%x\r\n", len(frame)-half)
	conn.Write(frame[half:])
	fmt.Fprintf(conn, "\r\n0\r\n\r\n")

	status, _, body := readTestResponse(t, bufio.NewReader(conn))
	if status != 200 {
		t.Fatalf("http status: expected 200, present %d", status)
	}

	rsp, _, err := DecodeMessage(body)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}

	if Status(rsp.Code) != StatusOk {
		t.Errorf("ipp status: expected ok, present %s", Status(rsp.Code))
	}
}

// TestServerBadChunk checks that a framing violation is an
// HTTP-level error
func TestServerBadChunk(t *testing.T) {
	_, _, addr := startTestServer(t)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %s", err)
	}
	defer conn.Close()

	fmt.Fprintf(conn, "POST /%s HTTP/1.1\r\n", IppResourcePath)
	fmt.Fprintf(conn, "Host: %s\r\n", addr)
	fmt.Fprintf(conn, "Content-Type: %s\r\n", IppContentType)
	fmt.Fprintf(conn, "Transfer-Encoding: chunked\r\n")
	fmt.Fprintf(conn, "\r\n")
	fmt.Fprintf(conn, "zz\r\ngarbage\r\n")
	conn.(*net.TCPConn).CloseWrite()

	status, _, _ := readTestResponse(t, bufio.NewReader(conn))
	if status != 400 {
		t.Errorf("http status: expected 400, present %d", status)
	}
}

// TestServerContentType checks that POSTed payloads must be
// declared as IPP
func TestServerContentType(t *testing.T) {
	_, _, addr := startTestServer(t)

	msg := NewRequest(DefaultVersion, OpGetPrinterAttributes, 1)
	group := msg.AddGroup(TagOperationGroup)
	group.Add(MakeAttribute("attributes-charset", TagCharset, String("utf-8")))

	frame, err := msg.EncodeBytes()
	if err != nil {
		t.Fatalf("encode: %s", err)
	}

	tests := []struct {
		ctype  string
		status int
	}{
		{"application/ipp", 200},
		{"application/ipp; charset=utf-8", 200},
		{"Application/IPP", 200},
		{"text/plain", 415},
		{"", 415},
	}

	for _, test := range tests {
		req, err := http.NewRequest("POST",
			"http://"+addr+"/"+IppResourcePath, bytes.NewReader(frame))
		if err != nil {
			t.Fatalf("request: %s", err)
		}
		if test.ctype != "" {
			req.Header.Set("Content-Type", test.ctype)
		}

		httpRsp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%q: post: %s", test.ctype, err)
		}

		io.Copy(io.Discard, httpRsp.Body)
		httpRsp.Body.Close()

		if httpRsp.StatusCode != test.status {
			t.Errorf("%q: http status: expected %d, present %d",
				test.ctype, test.status, httpRsp.StatusCode)
		}
	}
}

// TestServerBadIPP checks that an unparseable IPP body becomes
// an IPP-level error, not a dropped connection
func TestServerBadIPP(t *testing.T) {
	_, _, addr := startTestServer(t)

	// A valid header followed by garbage
	body := []byte{
		0x02, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x2a,
		0xff, 0xff, 0xff,
	}

	httpRsp, err := http.Post("http://"+addr+"/"+IppResourcePath,
		IppContentType, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %s", err)
	}
	defer httpRsp.Body.Close()

	data, err := io.ReadAll(httpRsp.Body)
	if err != nil {
		t.Fatalf("response body: %s", err)
	}

	rsp, _, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}

	if Status(rsp.Code) != StatusErrBadRequest {
		t.Errorf("ipp status: expected %s, present %s",
			StatusErrBadRequest, Status(rsp.Code))
	}
	if rsp.RequestID != 0x2a {
		t.Errorf("request-id not mirrored: %d", rsp.RequestID)
	}
}

// TestServerStatusPage fetches the human-readable status
func TestServerStatusPage(t *testing.T) {
	_, _, addr := startTestServer(t)

	httpRsp, err := http.Get("http://" + addr + "/")
	if err != nil {
		t.Fatalf("get: %s", err)
	}
	defer httpRsp.Body.Close()

	if httpRsp.StatusCode != 200 {
		t.Fatalf("http status: expected 200, present %d", httpRsp.StatusCode)
	}

	page, err := io.ReadAll(httpRsp.Body)
	if err != nil {
		t.Fatalf("page: %s", err)
	}

	if !strings.Contains(string(page), "Test Printer") {
		t.Errorf("printer name missing from the status page: %q", page)
	}
}
