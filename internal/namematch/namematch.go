// Package namematch wraps the standard regexp package for the facade's
// regex name-query path, translating a bad pattern into the BTF error
// taxonomy's Regex kind rather than letting regexp.Regexp's own error type
// leak through.
package namematch

import (
	"fmt"
	"regexp"

	"github.com/go-btf/gobtf/pkg/btf/btferr"
)

// Compile compiles pattern, wrapping any failure as btferr.ErrRegex.
func Compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("namematch: compiling %q: %w", pattern, btferr.ErrRegex)
	}
	return re, nil
}
