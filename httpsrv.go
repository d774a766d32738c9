/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * HTTP transport for IPP requests
 */

package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// The server terminates HTTP itself instead of sitting behind
// net/http: the stdlib owns Transfer-Encoding decoding, so the
// raw-frame workaround (sniff the IPP version byte before
// deciding whether chunk framing exists at all) cannot be
// expressed on top of it.

var httpSessionID int32

// Body reading errors, mapped to HTTP status codes in serveConn
var (
	errBodyTooLarge   = errors.New("request body too large")
	errLengthRequired = errors.New("content length required")
)

// Server accepts connections and serves IPP-over-HTTP requests,
// one goroutine per connection
type Server struct {
	listener   net.Listener
	dispatcher *Dispatcher
	printer    *Printer
	closing    int32          // Non-zero once Shutdown started
	conns      sync.WaitGroup // Tracks per-connection goroutines
	lock       sync.Mutex     // Protects active
	active     map[net.Conn]struct{}
}

// NewServer creates the Server
func NewServer(listener net.Listener, dispatcher *Dispatcher,
	printer *Printer) *Server {

	return &Server{
		listener:   listener,
		dispatcher: dispatcher,
		printer:    printer,
		active:     make(map[net.Conn]struct{}),
	}
}

// Serve runs the accept loop until Shutdown
func (srv *Server) Serve() error {
	for {
		conn, err := srv.listener.Accept()
		if err != nil {
			if atomic.LoadInt32(&srv.closing) != 0 {
				return nil
			}
			return err
		}

		srv.lock.Lock()
		srv.active[conn] = struct{}{}
		srv.lock.Unlock()

		srv.conns.Add(1)
		go func() {
			defer srv.conns.Done()
			srv.serveConn(conn)

			srv.lock.Lock()
			delete(srv.active, conn)
			srv.lock.Unlock()
		}()
	}
}

// Shutdown stops accepting, closes the remaining connections
// and waits for their goroutines. Idle keep-alive connections
// would otherwise hold the process until their read deadline
func (srv *Server) Shutdown() {
	atomic.StoreInt32(&srv.closing, 1)
	srv.listener.Close()

	srv.lock.Lock()
	for conn := range srv.active {
		conn.Close()
	}
	srv.lock.Unlock()

	srv.conns.Wait()
}

// serveConn serves requests on a single connection until the
// client goes away or framing requires a close. No error here
// may take down the process: everything is local to the
// connection
func (srv *Server) serveConn(conn net.Conn) {
	session := atomic.AddInt32(&httpSessionID, 1)

	defer conn.Close()

	br := bufio.NewReader(conn)
	tp := textproto.NewReader(br)

	for {
		conn.SetReadDeadline(time.Now().Add(HTTPIdleTimeout))

		line, err := tp.ReadLine()
		if err != nil {
			return
		}

		fields := strings.SplitN(line, " ", 3)
		if len(fields) != 3 {
			srv.httpError(session, conn, 400, "malformed request line")
			return
		}
		method, target, proto := fields[0], fields[1], fields[2]

		hdr, err := tp.ReadMIMEHeader()
		if err != nil {
			srv.httpError(session, conn, 400, "malformed headers")
			return
		}

		Log.Proto("> HTTP[%d]: %s %s %s", session, method, target, proto)

		closeAfter := proto == "HTTP/1.0" ||
			strings.EqualFold(hdr.Get("Connection"), "close")

		switch method {
		case "GET":
			srv.statusPage(session, conn, closeAfter)
			if closeAfter {
				return
			}
			continue

		case "POST":
			ctype := hdr.Get("Content-Type")
			if !strings.HasPrefix(strings.ToLower(ctype), IppContentType) {
				srv.httpError(session, conn, 415, "IPP payload expected")
				return
			}

		default:
			srv.httpError(session, conn, 405, "method not allowed")
			return
		}

		// IPP clients commonly ask for 100-continue before
		// sending the body
		if strings.EqualFold(hdr.Get("Expect"), "100-continue") {
			conn.Write([]byte("HTTP/1.1 100 Continue\r\n\r\n"))
		}

		conn.SetReadDeadline(time.Now().Add(HTTPBodyTimeout))

		body, raw, err := readBody(br, hdr)
		switch {
		case errors.Is(err, ErrChunkFraming):
			// Fail this connection only
			srv.httpError(session, conn, 400, err.Error())
			return
		case errors.Is(err, errBodyTooLarge):
			srv.httpError(session, conn, 413, err.Error())
			return
		case errors.Is(err, errLengthRequired):
			srv.httpError(session, conn, 411, err.Error())
			return
		case err != nil:
			Log.Debug("! HTTP[%d]: %s", session, err)
			return
		}

		if raw {
			// The raw-frame client has half-closed its side;
			// nothing more can arrive on this connection
			closeAfter = true
		}

		Log.Dump(body, "> HTTP[%d]: %d bytes of body", session, len(body))

		rsp := srv.handle(body)

		data, err := rsp.EncodeBytes()
		if err != nil {
			Log.Error("HTTP[%d]: response encoding: %s", session, err)
			srv.httpError(session, conn, 500, "internal error")
			return
		}

		srv.writeResponse(session, conn, data, closeAfter)

		if closeAfter {
			return
		}
	}
}

// handle decodes the IPP message and dispatches it. Unparseable
// bytes become an IPP-level bad-request status, mirroring
// whatever header fields could be salvaged; the connection
// stays open
func (srv *Server) handle(body []byte) *Message {
	msg, doc, err := DecodeMessage(body)
	if err == nil {
		return srv.dispatcher.Dispatch(msg, doc)
	}

	Log.Debug("! IPP: %s", err)

	salvaged := &Message{Version: DefaultVersion}
	if len(body) >= 8 {
		salvaged.Version = Version(binary.BigEndian.Uint16(body[0:2]))
		salvaged.RequestID = binary.BigEndian.Uint32(body[4:8])
	}

	return srv.dispatcher.respond(salvaged, StatusErrBadRequest)
}

// readBody reads the request body. The second return value
// reports that the raw-frame workaround was taken
func readBody(br *bufio.Reader, hdr textproto.MIMEHeader) ([]byte, bool, error) {
	te := hdr.Get("Transfer-Encoding")

	if te != "" && !strings.EqualFold(te, "identity") {
		prefix, err := br.Peek(1)
		if err != nil {
			return nil, false, err
		}

		if looksLikeRawIPP(prefix) {
			body, err := io.ReadAll(io.LimitReader(br, HTTPMaxBody+1))
			if err != nil {
				return nil, false, err
			}
			if len(body) > HTTPMaxBody {
				return nil, false, errBodyTooLarge
			}
			return body, true, nil
		}

		body, err := readChunked(br, HTTPMaxBody)
		return body, false, err
	}

	cl := hdr.Get("Content-Length")
	if cl == "" {
		return nil, false, errLengthRequired
	}

	length, err := strconv.ParseInt(cl, 10, 64)
	if err != nil || length < 0 {
		return nil, false, fmt.Errorf("%w: bad content length %q",
			ErrChunkFraming, cl)
	}

	if length > HTTPMaxBody {
		return nil, false, errBodyTooLarge
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(br, body); err != nil {
		return nil, false, err
	}

	return body, false, nil
}

// statusPage answers a plain GET with a short human-readable
// status, handy for checking the emulator from a browser
func (srv *Server) statusPage(session int32, conn net.Conn, closeAfter bool) {
	info := &srv.printer.Info

	var page strings.Builder
	fmt.Fprintf(&page, "%s\n", info.Name)
	fmt.Fprintf(&page, "state:   %s\n", srv.printer.State())
	fmt.Fprintf(&page, "uri:     %s\n", info.URI())
	fmt.Fprintf(&page, "formats: %s\n", strings.Join(info.Formats, ", "))
	fmt.Fprintf(&page, "jobs:    %d queued\n", srv.dispatcher.store.ActiveCount())

	srv.writeRaw(session, conn, 200, "text/plain; charset=utf-8",
		[]byte(page.String()), closeAfter)
}

// writeResponse sends a successful IPP response
func (srv *Server) writeResponse(session int32, conn net.Conn,
	data []byte, closeAfter bool) {

	Log.Dump(data, "< HTTP[%d]: %d bytes of response", session, len(data))
	srv.writeRaw(session, conn, 200, IppContentType, data, closeAfter)
}

// httpError rejects the request with an HTTP-level error.
// The caller closes the connection afterwards
func (srv *Server) httpError(session int32, conn net.Conn,
	status int, msg string) {

	Log.Debug("! HTTP[%d]: %d %s", session, status, msg)
	srv.writeRaw(session, conn, status, "text/plain; charset=utf-8",
		[]byte(msg+"\n"), true)
}

// writeRaw writes a complete HTTP response
func (srv *Server) writeRaw(session int32, conn net.Conn, status int,
	ctype string, body []byte, closeAfter bool) {

	conn.SetWriteDeadline(time.Now().Add(HTTPBodyTimeout))

	var buf strings.Builder
	fmt.Fprintf(&buf, "HTTP/1.1 %d %s\r\n", status, httpStatusText(status))
	fmt.Fprintf(&buf, "Server: ipp-emu/%s\r\n", ProgramVersion)
	fmt.Fprintf(&buf, "Content-Type: %s\r\n", ctype)
	fmt.Fprintf(&buf, "Content-Length: %d\r\n", len(body))
	if closeAfter {
		buf.WriteString("Connection: close\r\n")
	}
	buf.WriteString("\r\n")

	if _, err := conn.Write([]byte(buf.String())); err == nil {
		conn.Write(body)
	}

	Log.Proto("< HTTP[%d]: %d %s", session, status, httpStatusText(status))
}

// httpStatusText returns the reason phrase for the few status
// codes this server emits
func httpStatusText(status int) string {
	switch status {
	case 200:
		return "OK"
	case 400:
		return "Bad Request"
	case 405:
		return "Method Not Allowed"
	case 411:
		return "Length Required"
	case 413:
		return "Payload Too Large"
	case 415:
		return "Unsupported Media Type"
	case 500:
		return "Internal Server Error"
	}

	return "Unknown"
}
