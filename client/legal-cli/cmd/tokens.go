package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

type tokens struct {
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// loadTokens reads the token file. A missing file yields empty tokens.
func loadTokens(path string) (tokens, error) {
	var t tokens
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return t, err
	}
	if err := json.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("corrupt token file %s: %w", path, err)
	}
	return t, nil
}

func saveTokens(path string, t tokens) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
