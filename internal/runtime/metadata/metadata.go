package metadata

// Metadata carries the headers attached to a mirrored event.
type Metadata map[string]string

const (
	KeyHook      = "hiptail_hook"
	KeyRequestID = "hiptail_request_id"
	KeyOAuthID   = "hiptail_oauth_id"
	KeyRoomID    = "hiptail_room_id"
	KeyTraceID   = "hiptail_trace_id"
)

// Clone returns a shallow copy; never nil.
func (m Metadata) Clone() Metadata {
	cloned := make(Metadata, len(m))
	for k, v := range m {
		cloned[k] = v
	}
	return cloned
}

// With returns a copy containing key=value.
func (m Metadata) With(key, value string) Metadata {
	cloned := m.Clone()
	cloned[key] = value
	return cloned
}

// New constructs Metadata from alternating key/value pairs. A trailing
// odd key is ignored.
func New(pairs ...string) Metadata {
	md := make(Metadata, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		md[pairs[i]] = pairs[i+1]
	}
	return md
}
