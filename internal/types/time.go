package types

// UnixMilli is a timestamp in milliseconds since the Unix epoch.
type UnixMilli int64
