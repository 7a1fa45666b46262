package expr

import (
	"strings"
)

// Describer reduces an error to the fields exposed to CEL as `failure`.
type Describer func(error) map[string]any

// NewRetryClassifier compiles expression into a predicate deciding whether a
// failed attempt should be repeated. An empty expression retries everything.
// When evaluation itself fails the attempt is retried.
//
//	failure.kind == "unavailable" || failure.message.contains("timeout")
func NewRetryClassifier(expression string, describe Describer) (func(error) bool, error) {
	if strings.TrimSpace(expression) == "" {
		return func(error) bool { return true }, nil
	}
	env, err := NewEnvironment()
	if err != nil {
		return nil, err
	}
	program, err := env.Compile(expression)
	if err != nil {
		return nil, err
	}
	if describe == nil {
		describe = describeMessage
	}
	return func(err error) bool {
		if err == nil {
			return false
		}
		retry, evalErr := program.EvalBool(map[string]any{"failure": describe(err)})
		if evalErr != nil {
			return true
		}
		return retry
	}, nil
}

func describeMessage(err error) map[string]any {
	return map[string]any{"kind": "unknown", "message": err.Error()}
}
