package storage

import "errors"

var ErrNotFound = errors.New("item not found in storage")
var ErrItemAlreadyExists = errors.New("item with this key already exists")
var ErrNoOpenSubmissionWindow = errors.New("no submission stage is currently open")
