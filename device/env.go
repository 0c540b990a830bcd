package device

import (
	"os"
	"strconv"
	"strings"
)

func isDisabled() bool {
	v := strings.TrimSpace(os.Getenv(disabledEnv))
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
