package orchestrate

import "context"

// Generator is the external text-generation capability: prompt in, free-form
// text out. The orchestration core treats an error or empty response as "no
// result" for the step, never as a fatal session error. Implementations must
// honor ctx cancellation; the loop bounds every call with a timeout because
// the capability is untrusted for latency.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
