package io

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/circlegraph/pkg/errors"
)

// ArtifactPath returns the file path WriteArtifact uses for name and format.
func ArtifactPath(dir, name, format string) string {
	return filepath.Join(dir, name+"."+format)
}

// WriteArtifact writes data to <dir>/<name>.<format> and returns the path.
//
// dir must be an existing directory; WriteArtifact never creates it, so a
// mistyped output path fails instead of scattering files. The write goes
// through a temporary file in dir and a rename, so readers never observe a
// half-written image.
func WriteArtifact(dir, name, format string, data []byte) (string, error) {
	if err := errors.ValidateArtifactName(name); err != nil {
		return "", err
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", errors.New(errors.ErrCodeInvalidPath, "output directory %q does not exist", dir)
	}

	path := ArtifactPath(dir, name, format)
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename %s: %w", path, err)
	}
	return path, nil
}
