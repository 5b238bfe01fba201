package config

import "errors"

// errDisposed is returned by Reload when it is called after Dispose.
var errDisposed = errors.New("config: manager has been disposed")
