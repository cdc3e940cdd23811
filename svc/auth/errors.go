package auth

import "errors"

// ErrOpaqueToken is returned by Claims when the credential cannot be decoded as a JWT.
var ErrOpaqueToken = errors.New("credential is not a JWT")
