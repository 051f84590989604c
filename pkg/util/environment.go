package util

import (
	"os"
	"strings"
)

// GetEnvironmentVariables returns the process environment as a map. When a
// prefix is given only variables starting with it are returned.
func GetEnvironmentVariables(prefix ...string) map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)
		if len(pair) != 2 {
			continue
		}

		if len(prefix) > 0 && !strings.HasPrefix(pair[0], prefix[0]) {
			continue
		}

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}
