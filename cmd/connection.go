// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"
	"golang.org/x/term"

	"github.com/openshunt/openshunt/pkg/vedirect"
)

// Connection is a raw byte pipe to a VE.Direct device: a local serial port
// or a WebSocket-tunnelled remote UART.
type Connection interface {
	io.Reader
	io.Writer
	io.Closer
}

// ErrConnectionClosed is returned when reading from a closed WebSocket.
var ErrConnectionClosed = fmt.Errorf("websocket connection closed")

type serialConnection struct {
	port serial.Port
}

func (s *serialConnection) Read(p []byte) (int, error)  { return s.port.Read(p) }
func (s *serialConnection) Write(p []byte) (int, error) { return s.port.Write(p) }
func (s *serialConnection) Close() error                { return s.port.Close() }

type websocketConnection struct {
	conn   *websocket.Conn
	buf    []byte
	offset int
	closed bool
}

func (w *websocketConnection) Read(p []byte) (int, error) {
	if w.closed {
		return 0, ErrConnectionClosed
	}
	if w.offset < len(w.buf) {
		n := copy(p, w.buf[w.offset:])
		w.offset += n
		return n, nil
	}

	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.closed = true
			return 0, err
		}
		// The tunnel carries the UART stream as binary messages.
		if messageType != websocket.BinaryMessage {
			continue
		}
		w.buf = data
		w.offset = copy(p, data)
		return w.offset, nil
	}
}

func (w *websocketConnection) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *websocketConnection) Close() error {
	return w.conn.Close()
}

// openSerial opens a local serial port at the given baud rate with the
// VE.Direct line settings (8 data bits, no parity, 1 stop bit).
func openSerial(name string, baud int) (Connection, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: vedirect.DataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	return &serialConnection{port: port}, nil
}

// openWebSocket dials a ws:// or wss:// remote UART tunnel with optional
// HTTP Basic auth.
func openWebSocket(rawURL, username, password string, skipVerify bool) (Connection, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme %q (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: skipVerify}
	}

	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, rawURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket connect failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket connect failed: %w", err)
	}
	return &websocketConnection{conn: conn}, nil
}

// getPassword reads the tunnel password from the environment or prompts
// for it without echo.
func getPassword() (string, error) {
	if pw := os.Getenv("OPENSHUNT_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Not a terminal; fall back to plain line input.
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}
	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// openConnection opens whichever transport the global flags select. The
// baud argument overrides the --baud flag when positive (the bridge pins
// the line to the VE.Direct rate).
func openConnection(baud int) (Connection, string, error) {
	if wsURL != "" {
		password := ""
		if wsUsername != "" {
			var err error
			password, err = getPassword()
			if err != nil {
				return nil, "", err
			}
		}
		conn, err := openWebSocket(wsURL, wsUsername, password, wsNoSSLVerify)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("WebSocket: %s", wsURL), nil
	}

	if portName != "" {
		if baud <= 0 {
			baud = baudRate
		}
		conn, err := openSerial(portName, baud)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("Serial: %s @ %d baud 8N1", portName, baud), nil
	}

	return nil, "", fmt.Errorf("either --port or --url must be specified")
}
