// Package loader reads statement documents from YAML and CUE files and turns
// them into builders.
//
// A statement document names the builder operations to apply:
//
//	name: active_users
//	from: Users
//	as: U
//	select:
//	  id: U.id
//	  name: U.name
//	where: ["U.active = 1"]
//	order_by: [{expr: U.name}]
//	limit: {skip: 0, take: 20}
//
// A file holds one document or a statements list. Column mappings keep their
// document order.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Extensions recognized by LoadFile and Find.
var Extensions = []string{".yaml", ".yml", ".cue"}

// File is a loaded statement file.
type File struct {
	Path       string
	Statements []Statement
}

// LoadFile reads and decodes one statement file, picking the decoder from the
// file extension. Statements without a name are named after the file:
// "users" for a single statement in users.yaml, "users[1]" for the second
// entry of a list.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: "file not found", Path: path}
		}
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading file: %v", err), Path: path}
	}

	var stmts []Statement
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		stmts, err = ParseYAML(data)
	case ".cue":
		stmts, err = ParseCUE(path, data)
	default:
		return nil, &LoadError{
			Code:    ErrCodeUnsupported,
			Message: fmt.Sprintf("unsupported extension %q (want one of %s)", filepath.Ext(path), strings.Join(Extensions, ", ")),
			Path:    path,
		}
	}
	if err != nil {
		return nil, withPath(err, path)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i := range stmts {
		if stmts[i].Name != "" {
			continue
		}
		if len(stmts) == 1 {
			stmts[i].Name = base
		} else {
			stmts[i].Name = fmt.Sprintf("%s[%d]", base, i)
		}
	}

	return &File{Path: path, Statements: stmts}, nil
}

// Find expands the given paths into statement files. Files are returned as
// given; directories are walked for files with a recognized extension, in
// lexical order.
func Find(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: "path not found", Path: p}
		}
		if err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("accessing path: %v", err), Path: p}
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		var found []string
		err = filepath.Walk(p, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && hasExtension(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("scanning directory: %v", err), Path: p}
		}
		if len(found) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: "no statement files found", Path: p}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

func hasExtension(path string) bool {
	return lo.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

func withPath(err error, path string) error {
	if le, ok := err.(*LoadError); ok {
		cp := *le
		cp.Path = path
		return &cp
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error(), Path: path}
}
