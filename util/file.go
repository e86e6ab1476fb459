package util

import (
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// takes a save path and a variable number of strings and writes them to file separated by new lines
func WriteToFile(fs afero.Fs, savePath string, content ...string) error {
	if err := EnsureDir(fs, path.Dir(savePath)); err != nil {
		return err
	}
	return afero.WriteFile(fs, savePath, []byte(strings.Join(content, "\n")), 0644)
}

// appends every string as its own line, creating the file when missing
func AppendToFile(fs afero.Fs, savePath string, content ...string) error {
	if err := EnsureDir(fs, path.Dir(savePath)); err != nil {
		return err
	}
	f, err := fs.OpenFile(savePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return err
	}

	defer f.Close()

	for _, s := range content {
		if _, err = f.WriteString(s + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// creates the directory and its parents if needed
func EnsureDir(fs afero.Fs, dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if ok, err := afero.DirExists(fs, dir); err == nil && ok {
		return nil
	}
	return fs.MkdirAll(dir, os.ModePerm)
}
