// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shaderinc resolves #include statements in GLSL shader code,
// including the autogenerated UBO declaration files of a pipeline.
package shaderinc

import (
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"cogentcore.org/core/base/stringsx"
)

// maxDepth limits nested includes, to stop include cycles of files
// without #pragma once.
const maxDepth = 32

// Resolver processes #include "file" statements, using a file system
// and a set of in memory files such as generated UBO code, which take
// precedence. Files containing #pragma once are included at most once
// per call to [Resolver.Resolve].
type Resolver struct {
	// FS is the file system for included files. It can be nil.
	FS fs.FS

	// Path is the default directory tried for files not found as given.
	Path string

	// virtual are the in memory files, by name
	virtual map[string]string
}

// NewResolver returns a new resolver for the given file system and path.
func NewResolver(fsys fs.FS, path string) *Resolver {
	return &Resolver{FS: fsys, Path: path}
}

// WithFS returns a resolver using the given file system for files,
// sharing the in memory files of rs.
func (rs *Resolver) WithFS(fsys fs.FS) *Resolver {
	if rs.virtual == nil {
		rs.virtual = make(map[string]string)
	}
	return &Resolver{FS: fsys, Path: rs.Path, virtual: rs.virtual}
}

// SetFile sets the contents of an in memory file.
func (rs *Resolver) SetFile(name, code string) {
	if rs.virtual == nil {
		rs.virtual = make(map[string]string)
	}
	rs.virtual[name] = code
}

// Resolve returns the code with all #include lines replaced by the
// included files, recursively. The #include line itself is kept as a
// comment. Includes that cannot be found are logged and left commented.
func (rs *Resolver) Resolve(code string) string {
	once := map[string]bool{}
	return strings.Join(rs.resolve(code, once, 0), "\n")
}

func (rs *Resolver) resolve(code string, once map[string]bool, depth int) []string {
	fl := stringsx.SplitLines(code)
	out := make([]string, 0, len(fl))
	for _, ln := range fl {
		tl := strings.TrimSpace(ln)
		if tl == "#pragma once" {
			continue
		}
		if !strings.HasPrefix(tl, `#include "`) {
			out = append(out, ln)
			continue
		}
		out = append(out, "// "+tl)
		fn := tl[10:]
		qi := strings.Index(fn, `"`)
		if qi < 0 {
			slog.Error("shaderinc: malformed #include: no final quote", "line", tl)
			continue
		}
		fname := fn[:qi]
		if depth >= maxDepth {
			slog.Error("shaderinc: includes nested too deeply", "file", fname)
			continue
		}
		if once[fname] {
			continue
		}
		inc, ok := rs.file(fname)
		if !ok {
			slog.Error("shaderinc: could not find include", "file", fname, "path", rs.Path)
			continue
		}
		if HasPragmaOnce(inc) {
			once[fname] = true
		}
		out = append(out, rs.resolve(inc, once, depth+1)...)
	}
	return out
}

// file returns the contents of the named file, looking first in the
// in memory files, then in the file system as given and under Path.
func (rs *Resolver) file(name string) (string, bool) {
	if code, ok := rs.virtual[name]; ok {
		return code, true
	}
	if rs.FS == nil {
		return "", false
	}
	b, err := fs.ReadFile(rs.FS, name)
	if err != nil {
		b, err = fs.ReadFile(rs.FS, path.Join(rs.Path, name))
		if err != nil {
			return "", false
		}
	}
	return string(b), true
}

// HasPragmaOnce returns whether the code has a #pragma once line.
func HasPragmaOnce(code string) bool {
	for _, ln := range stringsx.SplitLines(code) {
		if strings.TrimSpace(ln) == "#pragma once" {
			return true
		}
	}
	return false
}
