package config

import "errors"

// ErrConfig marks any failure to load or validate startup configuration.
var ErrConfig = errors.New("configuration error")
