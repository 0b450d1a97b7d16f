package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

// Component tags a record with the emitting component name.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// AccountID tags a record with the acting account id.
func AccountID(id string) slog.Attr {
	return slog.String("account_id", id)
}
