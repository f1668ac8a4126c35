// Package storage provides report stores backed by a local directory or a Cloud Storage bucket.
package storage

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ErrInvalidName is returned for names that would escape the store root
var ErrInvalidName = goerr.New("invalid report file name")

// DefaultDir is where the reports live in the repository
const DefaultDir = "assets/reports/raw"

func validateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return goerr.Wrap(ErrInvalidName, "rejected report file name", goerr.V("name", name))
	}
	return nil
}
