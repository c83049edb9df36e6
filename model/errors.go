package model

import "errors"

// ErrBuilderSpent signals that a builder was used after it has either built
// its product or failed validation. Builders are single-use.
var ErrBuilderSpent = errors.New("builder is no longer valid")
