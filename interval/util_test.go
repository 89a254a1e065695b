package interval

import "errors"

// asError is a tiny shim over errors.As so that test call sites stay
// compact.
func asError(err error, target interface{}) bool {
	return errors.As(err, target)
}
