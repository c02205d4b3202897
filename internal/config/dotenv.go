package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// readDotEnv layers a local .env file under the process environment. A
// missing file is not an error; real deployments inject variables directly.
func readDotEnv(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
