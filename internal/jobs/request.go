package jobs

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
)

// Request is an immutable description of one external-process invocation.
type Request struct {
	tokens      []string
	environment map[string]string
	payload     []byte
	digest      string
}

// RequestOption configures optional parts of a Request.
type RequestOption func(*requestOptions) error

type requestOptions struct {
	environment map[string]string
	input       io.Reader
}

// WithEnvironment replaces the inherited environment with env.
func WithEnvironment(env map[string]string) RequestOption {
	return func(o *requestOptions) error {
		o.environment = maps.Clone(env)
		if o.environment == nil {
			o.environment = map[string]string{}
		}
		return nil
	}
}

// WithInput sets the payload written to the child's standard input.
// The reader is drained while the Request is built and closed afterwards
// when it implements io.Closer, whatever the outcome.
func WithInput(r io.Reader) RequestOption {
	return func(o *requestOptions) error {
		o.input = r
		return nil
	}
}

// WithInputString is shorthand for WithInput(strings.NewReader(s)).
func WithInputString(s string) RequestOption {
	return WithInput(strings.NewReader(s))
}

// NewRequest builds a Request from a tokenized command line. The first token
// is the program, the rest are its arguments in invocation order. Without
// options the child inherits the caller's environment and gets an empty
// standard input.
func NewRequest(tokens []string, opts ...RequestOption) (*Request, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyCommand
	}

	o := &requestOptions{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	if o.environment == nil {
		o.environment = InheritedEnvironment()
	}

	var payload []byte
	if o.input != nil {
		var err error
		payload, err = drain(o.input)
		if err != nil {
			return nil, fmt.Errorf("read request input: %w", err)
		}
	}

	req := &Request{
		tokens:      slices.Clone(tokens),
		environment: o.environment,
		payload:     payload,
	}
	req.digest = req.computeDigest()

	return req, nil
}

// MustNewRequest is like NewRequest but panics on error. It is meant for
// tests and static command tables.
func MustNewRequest(tokens []string, opts ...RequestOption) *Request {
	req, err := NewRequest(tokens, opts...)
	if err != nil {
		panic(err)
	}
	return req
}

func drain(r io.Reader) (data []byte, err error) {
	if c, ok := r.(io.Closer); ok {
		defer func() {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
	}
	return io.ReadAll(r)
}

// InheritedEnvironment returns the current process environment as a map.
func InheritedEnvironment() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if eqIdx := strings.Index(kv, "="); eqIdx > 0 {
			env[kv[:eqIdx]] = kv[eqIdx+1:]
		}
	}
	return env
}

// Program returns the first token.
func (r *Request) Program() string {
	return r.tokens[0]
}

// Args returns every token after the program.
func (r *Request) Args() []string {
	return slices.Clone(r.tokens[1:])
}

// Tokens returns a copy of the full token sequence.
func (r *Request) Tokens() []string {
	return slices.Clone(r.tokens)
}

// Environment returns a copy of the environment mapping.
func (r *Request) Environment() map[string]string {
	return maps.Clone(r.environment)
}

// Env returns the environment in os/exec "KEY=value" form, sorted by key.
func (r *Request) Env() []string {
	keys := slices.Sorted(maps.Keys(r.environment))
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+r.environment[k])
	}
	return env
}

// Input returns a fresh reader over the payload. Each call starts from the
// beginning.
func (r *Request) Input() io.Reader {
	return bytes.NewReader(r.payload)
}

// Payload returns a copy of the payload bytes.
func (r *Request) Payload() []byte {
	return bytes.Clone(r.payload)
}

// Digest identifies the request by its tokens, environment and payload.
// Equal requests have equal digests.
func (r *Request) Digest() string {
	return r.digest
}

// Equal reports whether both requests have the same tokens, environment
// and payload.
func (r *Request) Equal(other *Request) bool {
	if r == nil || other == nil {
		return r == other
	}
	return slices.Equal(r.tokens, other.tokens) &&
		maps.Equal(r.environment, other.environment) &&
		bytes.Equal(r.payload, other.payload)
}

// String renders the command line for logs. The environment and payload
// are left out.
func (r *Request) String() string {
	return strings.Join(r.tokens, " ")
}

func (r *Request) computeDigest() string {
	h := sha256.New()
	writeField := func(b []byte) {
		_, _ = fmt.Fprintf(h, "%d:", len(b))
		_, _ = h.Write(b)
	}

	writeField([]byte("tokens"))
	for _, t := range r.tokens {
		writeField([]byte(t))
	}
	writeField([]byte("env"))
	for _, kv := range r.Env() {
		writeField([]byte(kv))
	}
	writeField([]byte("payload"))
	writeField(r.payload)

	return hex.EncodeToString(h.Sum(nil))
}
