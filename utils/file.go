package utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirArchive writes objects as files below Root.
type DirArchive struct {
	Root string
}

func NewDirArchive(root string) (*DirArchive, error) {
	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &DirArchive{Root: root}, nil
}

// Path maps key to a file inside Root, rejecting keys that escape it.
func (a *DirArchive) Path(key string) (string, error) {
	root := filepath.Clean(a.Root)
	path := filepath.Join(root, filepath.FromSlash(key))
	if !strings.HasPrefix(path, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal archive key: %s", key)
	}
	return path, nil
}

// Put writes body through a temp file so readers never see a partial file.
func (a *DirArchive) Put(ctx context.Context, key string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := a.Path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
