package storage

import "errors"

var ErrNotFound = errors.New("item not found in storage")
var ErrItemWithIDAlreadyExists = errors.New("item with the same key already exists")
var ErrBallotAlreadyExists = errors.New("ballot already recorded for this voter")
