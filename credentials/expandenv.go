package credentials

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnvStrict expands environment variable references in s.
//
// Semantics:
//   - `$VAR` and `${VAR}` are expanded via os.ExpandEnv.
//   - If `${VAR}` is present but VAR is unset, it errors (wrapping
//     ErrMissingEnv) rather than substituting an empty string.
//   - `$$` emits a literal `$` (escape hatch).
func ExpandEnvStrict(s string) (string, error) {
	const dollarSentinel = "\x00OUTBOUND_CRED_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollarSentinel)

	missing := make(map[string]struct{})
	for _, match := range envRefPattern.FindAllStringSubmatch(s, -1) {
		key := match[1]
		if _, ok := os.LookupEnv(key); !ok {
			missing[key] = struct{}{}
		}
	}
	if len(missing) > 0 {
		keys := make([]string, 0, len(missing))
		for k := range missing {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(keys, ", "))
	}

	s = os.ExpandEnv(s)
	s = strings.ReplaceAll(s, dollarSentinel, "$")
	return s, nil
}

// FromEnv returns a Source whose header values may reference environment
// variables with ${VAR} syntax:
//
//	src, err := credentials.FromEnv(map[string]string{
//	    "Authorization": "Bearer ${PMS_API_TOKEN}",
//	    "X-Property-Id": "${PMS_PROPERTY_ID}",
//	})
//
// Expansion happens once, at construction, and is strict: any unset variable
// fails the call.
func FromEnv(headers map[string]string) (Source, error) {
	expanded := make(map[string]string, len(headers))
	for k, v := range headers {
		ev, err := ExpandEnvStrict(v)
		if err != nil {
			return nil, fmt.Errorf("header %q: %w", k, err)
		}
		expanded[k] = ev
	}
	return Static(expanded), nil
}
