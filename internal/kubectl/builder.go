package kubectl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/mattn/go-shellwords"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"

	"github.com/giantswarm/kubectl-jobs/internal/accounts"
	"github.com/giantswarm/kubectl-jobs/internal/jobs"
	"github.com/giantswarm/kubectl-jobs/internal/kinds"
)

// DefaultProgram is the executable used when no program is configured.
const DefaultProgram = "kubectl"

// Builder assembles kubectl requests. It holds no per-call state and is safe
// for concurrent use.
type Builder struct {
	program  []string
	env      map[string]string
	registry *kinds.Registry
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder) error

// WithProgram replaces the program tokens, e.g. {"kubectl", "--v=4"}.
func WithProgram(tokens ...string) BuilderOption {
	return func(b *Builder) error {
		if len(tokens) == 0 || tokens[0] == "" {
			return jobs.ErrEmptyCommand
		}
		b.program = slices.Clone(tokens)
		return nil
	}
}

// WithProgramLine parses a shell-style command line into the program tokens.
func WithProgramLine(line string) BuilderOption {
	return func(b *Builder) error {
		tokens, err := ParseProgram(line)
		if err != nil {
			return err
		}
		b.program = tokens
		return nil
	}
}

// WithEnvironment sets the environment of every built request. Without it
// requests inherit the current process environment.
func WithEnvironment(env map[string]string) BuilderOption {
	return func(b *Builder) error {
		b.env = env
		return nil
	}
}

// ParseProgram splits a shell-style command line such as
// `kubectl --v=4 --request-timeout="30s"` into tokens.
func ParseProgram(line string) ([]string, error) {
	tokens, err := shellwords.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("parse program %q: %w", line, err)
	}
	if len(tokens) == 0 {
		return nil, jobs.ErrEmptyCommand
	}
	return tokens, nil
}

// NewBuilder creates a Builder resolving kinds through registry.
func NewBuilder(registry *kinds.Registry, opts ...BuilderOption) (*Builder, error) {
	if registry == nil {
		return nil, fmt.Errorf("builder requires a kinds registry")
	}
	b := &Builder{
		program:  []string{DefaultProgram},
		registry: registry,
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Program returns a copy of the program tokens.
func (b *Builder) Program() []string {
	return slices.Clone(b.program)
}

// Deploy builds `apply -f -` with the manifest as JSON on standard input.
// The manifest carries its own namespace, so no namespace flag is emitted.
func (b *Builder) Deploy(creds accounts.Credentials, manifest *unstructured.Unstructured) (*jobs.Request, error) {
	if manifest == nil {
		return nil, fmt.Errorf("%w: manifest is nil", ErrInvalidManifest)
	}
	gvk := manifest.GroupVersionKind()
	if gvk.Kind == "" {
		return nil, fmt.Errorf("%w: manifest %q has no kind", ErrInvalidManifest, manifest.GetName())
	}
	if _, err := b.registry.Resolve(gvk.Kind, gvk.Group); err != nil {
		return nil, err
	}

	payload, err := manifest.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	tokens := append(b.prefix(creds, false, ""), "apply", "-f", "-")
	return b.request(tokens, jobs.WithInput(bytes.NewReader(payload)))
}

// Patch builds `patch <kind> <name> --type <strategy> --patch <body>`.
// body is JSON-encoded onto a single line; strings and byte slices are taken
// as already-encoded JSON.
func (b *Builder) Patch(creds accounts.Credentials, namespace string, ref kinds.Ref, body any, opts PatchOptions) (*jobs.Request, error) {
	res, err := b.resolve(ref)
	if err != nil {
		return nil, err
	}
	patchType, err := opts.Strategy.PatchType()
	if err != nil {
		return nil, err
	}
	encoded, err := encodePatch(body, patchType)
	if err != nil {
		return nil, err
	}

	tokens := append(b.prefix(creds, res.Namespaced, namespace),
		"patch", res.Token, ref.Name,
		"--type", string(opts.Strategy),
		"--patch", encoded,
	)
	if opts.Record {
		tokens = append(tokens, "--record")
	}
	return b.request(tokens)
}

// Delete builds `delete <kind>/<name> --ignore-not-found=true`.
func (b *Builder) Delete(creds accounts.Credentials, namespace string, ref kinds.Ref, opts DeleteOptions) (*jobs.Request, error) {
	res, err := b.resolve(ref)
	if err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	tokens := append(b.prefix(creds, res.Namespaced, namespace),
		"delete", res.Token+"/"+ref.Name, "--ignore-not-found=true")
	if opts.GracePeriod != nil {
		tokens = append(tokens, "--grace-period="+strconv.FormatInt(*opts.GracePeriod, 10))
	}
	if opts.Cascade != "" {
		tokens = append(tokens, "--cascade="+string(opts.Cascade))
	}
	return b.request(tokens)
}

// Get builds `-o json get <kind> <name>`.
func (b *Builder) Get(creds accounts.Credentials, namespace string, ref kinds.Ref) (*jobs.Request, error) {
	res, err := b.resolve(ref)
	if err != nil {
		return nil, err
	}
	tokens := append(b.prefix(creds, res.Namespaced, namespace), "-o", "json", "get", res.Token, ref.Name)
	return b.request(tokens)
}

// List builds `-o json get <kind>` for every object of kind, which may carry
// its group as in "ServiceMonitor.monitoring.coreos.com".
func (b *Builder) List(creds accounts.Credentials, namespace, kind string) (*jobs.Request, error) {
	gk := schema.ParseGroupKind(kind)
	if gk.Kind == "" {
		return nil, fmt.Errorf("%w: empty kind", kinds.ErrInvalidManifestName)
	}
	res, err := b.registry.Resolve(gk.Kind, gk.Group)
	if err != nil {
		return nil, err
	}
	tokens := append(b.prefix(creds, res.Namespaced, namespace), "-o", "json", "get", res.Token)
	return b.request(tokens)
}

// Top builds `top po --containers`.
func (b *Builder) Top(creds accounts.Credentials, namespace string) (*jobs.Request, error) {
	res, err := b.registry.Resolve("pod", "")
	if err != nil {
		return nil, err
	}
	tokens := append(b.prefix(creds, res.Namespaced, namespace), "top", "po", "--containers")
	return b.request(tokens)
}

func (b *Builder) resolve(ref kinds.Ref) (kinds.Resolution, error) {
	if ref.Kind == "" || ref.Name == "" {
		return kinds.Resolution{}, fmt.Errorf("%w: %q", kinds.ErrInvalidManifestName, ref.String())
	}
	return b.registry.ResolveRef(ref)
}

// prefix returns program, account flags and, for namespaced kinds with a
// known namespace, the namespace flag.
func (b *Builder) prefix(creds accounts.Credentials, namespaced bool, namespace string) []string {
	tokens := slices.Clone(b.program)
	if creds.KubeconfigPath != "" {
		tokens = append(tokens, "--kubeconfig="+creds.KubeconfigPath)
	}
	if creds.Context != "" {
		tokens = append(tokens, "--context="+creds.Context)
	}
	if namespaced {
		if namespace == "" {
			namespace = creds.Namespace
		}
		if namespace != "" {
			tokens = append(tokens, "--namespace="+namespace)
		}
	}
	return tokens
}

func (b *Builder) request(tokens []string, opts ...jobs.RequestOption) (*jobs.Request, error) {
	if b.env != nil {
		opts = append(opts, jobs.WithEnvironment(b.env))
	}
	return jobs.NewRequest(tokens, opts...)
}

func encodePatch(body any, patchType types.PatchType) (string, error) {
	var raw []byte
	switch v := body.(type) {
	case nil:
		return "", fmt.Errorf("%w: body is empty", ErrInvalidPatchBody)
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	case json.RawMessage:
		raw = v
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidPatchBody, err)
		}
		raw = buf.Bytes()
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPatchBody, err)
	}
	encoded := compact.String()

	want := byte('{')
	if patchType == types.JSONPatchType {
		want = '['
	}
	if encoded == "" || encoded[0] != want {
		return "", fmt.Errorf("%w: %s patch must be a JSON %s", ErrInvalidPatchBody, patchType, shapeName(want))
	}
	return encoded, nil
}

func shapeName(c byte) string {
	if c == '[' {
		return "array"
	}
	return "object"
}
