package metify

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/reoring/metify/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeConfig             = "config_error"
	CodeRequired           = "required"
	CodeUnexpectedArgument = "unexpected_argument"
	CodeValidation         = "validation_error"
	CodeUnknownKey         = "unknown_key"
	CodeFrozen             = "frozen"
	CodeParseError         = "parse_error"
	CodeSerialization      = "serialization_error"
	CodeRecursionLimit     = "recursion_limit"
)

// Issue represents a single flattened error entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /address/city).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints.
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in the input source (-1 when unknown).
	// Params carries structured parameters (e.g., {"model":"User"}) for i18n
	// and observability.
	Params map[string]any
}

// Issues is a collection of flattened errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// ConfigurationError reports an invalid schema or config, or an operation the
// model is not configured for (for example ByAlias without any alias source).
type ConfigurationError struct {
	Model  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("metify: %s: configuration error: %s", e.Model, e.Reason)
}

// MissingFieldsError lists every required field absent from the input, in
// declaration order.
type MissingFieldsError struct {
	Model  string
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("metify: %s: missing required fields: %s", e.Model, strings.Join(e.Fields, ", "))
}

// UnexpectedArgumentsError lists every keyword that no init field consumed,
// sorted.
type UnexpectedArgumentsError struct {
	Model string
	Keys  []string
}

func (e *UnexpectedArgumentsError) Error() string {
	return fmt.Sprintf("metify: %s: unexpected keyword arguments: %s", e.Model, strings.Join(e.Keys, ", "))
}

// FieldValidationError wraps a validator or deserializer failure for one field.
type FieldValidationError struct {
	Model string
	Field string
	Cause error
}

func (e *FieldValidationError) Error() string {
	return fmt.Sprintf("metify: %s: validation error for %s: %v", e.Model, e.Field, e.Cause)
}

func (e *FieldValidationError) Unwrap() error { return e.Cause }

// UnknownFieldError lists every unrecognized input key, sorted. Only raised in
// strict mode.
type UnknownFieldError struct {
	Model string
	Keys  []string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("metify: %s: unknown fields: %s", e.Model, strings.Join(e.Keys, ", "))
}

// FrozenModelError is returned by Set and Delete on a frozen instance.
type FrozenModelError struct {
	Model string
	Field string
	Op    string // "set" or "delete"
}

func (e *FrozenModelError) Error() string {
	return fmt.Sprintf("metify: cannot %s %s on frozen model %s", e.Op, e.Field, e.Model)
}

// JSONDecodeError wraps a codec parse failure. Offset is -1 when the codec
// does not report a position.
type JSONDecodeError struct {
	Adapter string
	Offset  int64
	Cause   error
}

func (e *JSONDecodeError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("metify: %s decode error at offset %d: %v", e.Adapter, e.Offset, e.Cause)
	}
	return fmt.Sprintf("metify: %s decode error: %v", e.Adapter, e.Cause)
}

func (e *JSONDecodeError) Unwrap() error { return e.Cause }

// SerializationError wraps a serializer failure during a strict Dump.
type SerializationError struct {
	Model string
	Field string
	Cause error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("metify: %s: serialization error for %s: %v", e.Model, e.Field, e.Cause)
}

func (e *SerializationError) Unwrap() error { return e.Cause }

// RecursionError is returned when Dump or Load nests deeper than MaxDepth.
type RecursionError struct {
	Model string
	Depth int
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("metify: %s: recursion limit exceeded (depth %d)", e.Model, e.Depth)
}

// LoadError collects every failure of one Load phase for the model at Path.
type LoadError struct {
	Model string
	Path  string
	Errs  []error
}

func (e *LoadError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	path := e.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("metify: load %s at %s: %s", e.Model, path, strings.Join(msgs, "; "))
}

func (e *LoadError) Unwrap() []error { return e.Errs }

// Errors is returned when construction fails for more than one reason.
type Errors []error

func (es Errors) Error() string {
	msgs := make([]string, 0, len(es))
	for _, err := range es {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

func (es Errors) Unwrap() []error { return es }

func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	return Errors(errs)
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues flattens any error produced by this package into Issues with JSON
// Pointer paths. Issues values are extracted using errors.As. It reports false
// when err carries nothing this package recognizes.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	out := collectIssues(nil, err, "")
	if len(out) == 0 {
		return nil, false
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, true
}

func collectIssues(dst Issues, err error, base string) Issues {
	mk := func(path, code string, model string, cause error) Issue {
		return Issue{
			Path:    path,
			Code:    code,
			Message: i18n.T(code, map[string]string{"model": model}),
			Cause:   cause,
			Offset:  -1,
			Params:  map[string]any{"model": model},
		}
	}
	at := func(name string) string { return pointerJoin(base, name) }
	root := base
	if root == "" {
		root = "/"
	}

	switch e := err.(type) {
	case *LoadError:
		for _, inner := range e.Errs {
			dst = collectIssues(dst, inner, e.Path)
		}
	case Errors:
		for _, inner := range e {
			dst = collectIssues(dst, inner, base)
		}
	case *MissingFieldsError:
		for _, f := range e.Fields {
			dst = append(dst, mk(at(f), CodeRequired, e.Model, e))
		}
	case *UnexpectedArgumentsError:
		for _, k := range e.Keys {
			dst = append(dst, mk(at(k), CodeUnexpectedArgument, e.Model, e))
		}
	case *UnknownFieldError:
		for _, k := range e.Keys {
			dst = append(dst, mk(at(k), CodeUnknownKey, e.Model, e))
		}
	case *FieldValidationError:
		it := mk(at(e.Field), CodeValidation, e.Model, e.Cause)
		if e.Cause != nil {
			it.Hint = e.Cause.Error()
		}
		dst = append(dst, it)
	case *SerializationError:
		dst = append(dst, mk(at(e.Field), CodeSerialization, e.Model, e.Cause))
	case *FrozenModelError:
		dst = append(dst, mk(at(e.Field), CodeFrozen, e.Model, e))
	case *ConfigurationError:
		it := mk(root, CodeConfig, e.Model, e)
		it.Hint = e.Reason
		dst = append(dst, it)
	case *RecursionError:
		dst = append(dst, mk(root, CodeRecursionLimit, e.Model, e))
	case *JSONDecodeError:
		it := mk(root, CodeParseError, e.Adapter, e.Cause)
		it.Offset = e.Offset
		dst = append(dst, it)
	default:
		if u, ok := err.(interface{ Unwrap() []error }); ok {
			for _, inner := range u.Unwrap() {
				dst = collectIssues(dst, inner, base)
			}
		} else if inner := errors.Unwrap(err); inner != nil {
			dst = collectIssues(dst, inner, base)
		}
	}
	return dst
}
