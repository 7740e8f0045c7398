// Package transport opens the byte stream the emulator's protocol front end
// runs over. The controller core never allocates or names the OS-visible
// serial device itself; this package is the thin, swappable glue
// cmd/grblsim uses to get an io.ReadWriteCloser, grounded on
// comm.RemoteDevice's serial/TCP duality (github.com/nasa-jpl/golaborate/comm)
// but built for the server side of the connection instead of the client
// side.
package transport

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/tarm/serial"
	"golang.org/x/sys/unix"
)

// Transport is a bidirectional 8-bit byte stream with a name suitable for
// reporting through $I/status. No baud rate is enforced on the stream
// itself; DescriptorConfig below is purely descriptive.
type Transport interface {
	Name() string
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
	Close() error
}

// DescriptorConfig mirrors newport's makeSerConf: the baud/parity/stopbits a
// real serial sender would expect the exposed device to advertise, even
// though this core enforces no baud rate. It is informational only.
var DescriptorConfig = serial.Config{
	Baud:     115200,
	Size:     8,
	Parity:   serial.ParityNone,
	StopBits: serial.Stop1,
}

// ptyTransport exposes a Linux pseudo-terminal's master side as a
// Transport; the slave side (named by Name) is what an external sender
// opens as its serial device.
type ptyTransport struct {
	master *os.File
	name   string
}

// OpenPTY allocates a pseudo-terminal via /dev/ptmx, following the same
// unlock-then-resolve-peer sequence as Daedaluz-goserial's OpenPTY, but
// through golang.org/x/sys/unix ioctls directly rather than introducing a
// separate serial-port package.
func OpenPTY() (Transport, error) {
	master, err := os.OpenFile("/dev/ptmx", os.O_RDWR|os.O_NOCTTY, 0)
	if err != nil {
		return nil, err
	}

	fd := int(master.Fd())
	if err := unix.IoctlSetPointerInt(fd, unix.TIOCSPTLCK, 0); err != nil {
		master.Close()
		return nil, fmt.Errorf("unlocking pty: %w", err)
	}
	n, err := unix.IoctlGetInt(fd, unix.TIOCGPTN)
	if err != nil {
		master.Close()
		return nil, fmt.Errorf("resolving pty peer: %w", err)
	}

	return &ptyTransport{master: master, name: fmt.Sprintf("/dev/pts/%d", n)}, nil
}

func (p *ptyTransport) Name() string { return p.name }

func (p *ptyTransport) ReadByte() (byte, error) {
	var b [1]byte
	_, err := p.master.Read(b[:])
	return b[0], err
}

func (p *ptyTransport) Write(buf []byte) (int, error) {
	return p.master.Write(buf)
}

func (p *ptyTransport) Close() error {
	return p.master.Close()
}

// tcpTransport exposes one accepted TCP connection as a Transport, for
// headless use and integration tests that would rather dial a socket than
// open a real pty (comm.TCPSetup's counterpart on the server side).
type tcpTransport struct {
	conn net.Conn
	name string
}

// ListenAndAcceptTCP listens on addr and blocks until a single client
// connects, returning that connection as a Transport.
func ListenAndAcceptTCP(addr string) (Transport, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	defer ln.Close()

	conn, err := ln.Accept()
	if err != nil {
		return nil, err
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetKeepAlive(true)
		_ = tcp.SetKeepAlivePeriod(30 * time.Second)
	}
	return &tcpTransport{conn: conn, name: conn.RemoteAddr().String()}, nil
}

func (t *tcpTransport) Name() string { return t.name }

func (t *tcpTransport) ReadByte() (byte, error) {
	var b [1]byte
	_, err := t.conn.Read(b[:])
	return b[0], err
}

func (t *tcpTransport) Write(buf []byte) (int, error) {
	return t.conn.Write(buf)
}

func (t *tcpTransport) Close() error {
	return t.conn.Close()
}
