package config

import (
	"fmt"
	"io"

	toml "github.com/pelletier/go-toml/v2"
)

// WriteTOML writes s in the settings file format, so the output can be saved
// as inputmap.toml and edited.
func (s *Settings) WriteTOML(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return nil
}
