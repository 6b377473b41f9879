package encoding

import (
	"bytes"

	"github.com/BurntSushi/toml"

	"github.com/qdirstat-go/qdirstat/pkg/logging"
)

// LoadAndUnmarshalTOML loads data from the specified path and decodes it into
// the specified structure.
func LoadAndUnmarshalTOML(path string, value interface{}) error {
	return LoadAndUnmarshal(path, func(data []byte) error {
		return toml.Unmarshal(data, value)
	})
}

// MarshalAndSaveTOML encodes value as TOML and saves it to the specified
// path, via MarshalAndSave.
func MarshalAndSaveTOML(path string, logger *logging.Logger, value interface{}) error {
	return MarshalAndSave(path, logger, func() ([]byte, error) {
		var buffer bytes.Buffer
		if err := toml.NewEncoder(&buffer).Encode(value); err != nil {
			return nil, err
		}
		return buffer.Bytes(), nil
	})
}
