// Package validation provides common validation utilities for configuration
// parameters across the rxflow library.
//
// This package offers reusable validation functions that help ensure
// consistent error messages and reduce boilerplate code in operator
// constructors. Every function returns a *errors.ValidationError, which
// unwraps to errors.ErrInvalidConfiguration.
package validation
