package store

import "errors"

var errDuplicateKey = errors.New("duplicate key")
