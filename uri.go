package amqpwire

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// URI is an amqp:// or amqps:// connection string broken into the pieces
// DialURL needs: network address, virtual host, and a PLAIN credential pair
// suitable for PlainAuth.
type URI struct {
	Scheme   string
	Host     string
	Port     int
	Username string
	Password string
	Vhost    string
}

const (
	defaultAMQPPort  = 5672
	defaultAMQPSPort = 5671
)

// ParseURI parses an amqp(s)://user:pass@host:port/vhost URI per RabbitMQ's
// own URI spec: a missing port defaults by scheme, a missing or "/" path
// means the default vhost "/", and any other path is percent-decoded into
// the vhost verbatim (a vhost literally named "/" must be written as "%2f").
func ParseURI(raw string) (URI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return URI{}, fmt.Errorf("amqpwire: invalid URI %q: %w", raw, err)
	}
	switch u.Scheme {
	case "amqp", "amqps":
	default:
		return URI{}, fmt.Errorf("amqpwire: unsupported URI scheme %q (want amqp or amqps)", u.Scheme)
	}

	out := URI{Scheme: u.Scheme, Vhost: "/"}

	host := u.Hostname()
	if host == "" {
		host = "localhost"
	}
	out.Host = host

	if portStr := u.Port(); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return URI{}, fmt.Errorf("amqpwire: invalid port in URI %q: %w", raw, err)
		}
		out.Port = p
	} else if u.Scheme == "amqps" {
		out.Port = defaultAMQPSPort
	} else {
		out.Port = defaultAMQPPort
	}

	if u.User != nil {
		out.Username = u.User.Username()
		out.Password, _ = u.User.Password()
	}

	if path := strings.TrimPrefix(u.EscapedPath(), "/"); path != "" {
		vhost, err := url.PathUnescape(path)
		if err != nil {
			return URI{}, fmt.Errorf("amqpwire: invalid vhost in URI %q: %w", raw, err)
		}
		out.Vhost = vhost
	}

	return out, nil
}

// Addr returns the host:port suitable for net.Dial.
func (u URI) Addr() string {
	return net.JoinHostPort(u.Host, strconv.Itoa(u.Port))
}

// DialURL parses rawurl and dials it, filling in VirtualHost and a PLAIN
// Authentication from the URI's credentials if cfg doesn't already set them.
// TLS is out of scope here: an amqps:// scheme is accepted for its
// credential/vhost parsing but DialURL always opens a plain net.Conn,
// matching spec.md's "TLS termination" non-goal - callers needing TLS dial
// their own *tls.Conn and pass it to Open directly.
func DialURL(rawurl string, cfg Config) (*Connection, error) {
	u, err := ParseURI(rawurl)
	if err != nil {
		return nil, err
	}
	if cfg.VirtualHost == "" {
		cfg.VirtualHost = u.Vhost
	}
	if len(cfg.SASL) == 0 && u.Username != "" {
		cfg.SASL = []Authentication{PlainAuth(u.Username, u.Password)}
	}
	return Dial(u.Addr(), cfg)
}
