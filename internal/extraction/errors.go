package extraction

import "errors"

// ErrUnsupportedShape is returned when a response is valid JSON but neither
// an object nor an array of objects.
var ErrUnsupportedShape = errors.New("unsupported response shape")
