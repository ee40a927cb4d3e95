package configparser

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

var ErrNoFilePath = errors.New("no file path provided")

// LoadYamlFile reads a YAML file and exports its keys into the environment.
// Nested keys are joined with "_" and upper-cased (store.driver -> STORE_DRIVER).
// Variables already present in the environment win over the file.
func LoadYamlFile(filepath string) error {
	if filepath == "" {
		return ErrNoFilePath
	}

	v := viper.New()
	v.SetConfigFile(filepath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("could not read YAML file: %w", err)
	}

	for _, key := range v.AllKeys() {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if _, ok := os.LookupEnv(envKey); ok {
			continue
		}

		value := os.ExpandEnv(v.GetString(key))
		if value == "" {
			continue
		}
		if err := os.Setenv(envKey, value); err != nil {
			return fmt.Errorf("could not set env var %s: %w", envKey, err)
		}
	}

	return nil
}

// LoadAndParseYaml loads the YAML file into the environment and fills cfg from it.
// A missing file is not an error: defaults and the real environment still apply.
func LoadAndParseYaml(filepath string, cfg any) error {
	if err := LoadYamlFile(filepath); err != nil {
		if !errors.Is(err, ErrNoFilePath) && !isNotExist(err) {
			return err
		}
	}

	return ParseEnv(cfg)
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}
