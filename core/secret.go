package core

// redactedPlaceholder is what every formatting and marshaling path emits
// instead of the wrapped value.
const redactedPlaceholder = "[REDACTED]"

// Secret holds a credential and keeps it out of logs. Formatting with %v or
// %#v, JSON marshaling, and text marshaling all produce a fixed placeholder;
// the wrapped value only leaves through Expose.
type Secret struct {
	value string
}

// NewSecret wraps a credential value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// Expose returns the wrapped value. The caller takes responsibility for
// where it ends up; it should go straight into a header, not a log line.
func (s Secret) Expose() string {
	return s.value
}

// IsEmpty reports whether no value is wrapped.
func (s Secret) IsEmpty() bool {
	return s.value == ""
}

// String implements fmt.Stringer, emitting the placeholder.
func (s Secret) String() string {
	return redactedPlaceholder
}

// GoString implements fmt.GoStringer so %#v cannot leak the value either.
func (s Secret) GoString() string {
	return "core.Secret{" + redactedPlaceholder + "}"
}

// MarshalText implements encoding.TextMarshaler, emitting the placeholder.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(redactedPlaceholder), nil
}

// MarshalJSON emits the placeholder as a JSON string.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redactedPlaceholder + `"`), nil
}
