// SPDX-License-Identifier: MPL-2.0

package coreutils

import (
	"errors"

	"github.com/u-root/u-root/pkg/core"
	"github.com/u-root/u-root/pkg/core/base64"
	"github.com/u-root/u-root/pkg/core/cat"
	"github.com/u-root/u-root/pkg/core/chmod"
	"github.com/u-root/u-root/pkg/core/cp"
	"github.com/u-root/u-root/pkg/core/find"
	"github.com/u-root/u-root/pkg/core/gzip"
	"github.com/u-root/u-root/pkg/core/ls"
	"github.com/u-root/u-root/pkg/core/mkdir"
	"github.com/u-root/u-root/pkg/core/mktemp"
	"github.com/u-root/u-root/pkg/core/mv"
	"github.com/u-root/u-root/pkg/core/rm"
	"github.com/u-root/u-root/pkg/core/shasum"
	"github.com/u-root/u-root/pkg/core/tar"
	"github.com/u-root/u-root/pkg/core/touch"

	"github.com/zensh/zensh/pkg/shell"
)

// CategoryFiles is the category the utilities are registered under.
const CategoryFiles = "files"

// Category registers utilities as "f_<name>".
var Category = shell.Category{UID: "f", Name: CategoryFiles, Description: "File utilities"}

// Utilities returns a fresh set of every supported utility, sorted by name.
func Utilities() []*Utility {
	return []*Utility{
		{
			name:        "base64",
			description: "Encode or decode base64",
			params:      "[-d] [file]",
			flags:       []Flag{{Name: "d", Description: "decode data"}},
			newCore:     func() core.Command { return base64.New() },
		},
		{
			name:        "cat",
			description: "Print files",
			params:      "<file...>",
			flags:       []Flag{{Name: "u", Description: "ignored, for compatibility"}},
			newCore:     func() core.Command { return cat.New() },
		},
		{
			name:        "chmod",
			description: "Change file mode bits",
			params:      "<mode> <file...>",
			flags: []Flag{
				{Name: "recursive", Description: "change files and directories recursively"},
				{Name: "reference", Description: "use the mode of another file", TakesValue: true},
			},
			newCore: func() core.Command { return chmod.New() },
		},
		{
			name:        "cp",
			description: "Copy files and directories",
			params:      "<source...> <dest>",
			flags: []Flag{
				{Name: "r", Description: "copy directories recursively"},
				{Name: "f", Description: "remove an existing destination first"},
				{Name: "n", Description: "do not overwrite an existing file"},
				{Name: "P", Description: "never follow symbolic links"},
			},
			newCore: func() core.Command { return cp.New() },
		},
		{
			name:        "find",
			description: "Search for files in a directory tree",
			params:      "[dir]",
			flags: []Flag{
				{Name: "name", Description: "match the file name against a pattern", TakesValue: true},
				{Name: "type", Description: "match the file type (f, d, l)", TakesValue: true},
				{Name: "mode", Description: "match the file mode", TakesValue: true},
				{Name: "l", Description: "long listing format"},
			},
			newCore: func() core.Command { return find.New() },
		},
		{
			name:        "gzip",
			description: "Compress or expand files",
			params:      "<file...>",
			flags: []Flag{
				{Name: "d", Description: "decompress"},
				{Name: "c", Description: "write to standard output"},
				{Name: "f", Description: "overwrite existing output"},
				{Name: "q", Description: "suppress warnings"},
			},
			newCore: func() core.Command { return gzip.New() },
		},
		{
			name:        "ls",
			description: "List directory contents",
			params:      "[path...]",
			flags: []Flag{
				{Name: "l", Description: "use a long listing format"},
				{Name: "a", Description: "include entries starting with ."},
				{Name: "R", Description: "list subdirectories recursively"},
				{Name: "h", Description: "print sizes in human readable format"},
				{Name: "Q", Description: "quote entry names"},
			},
			newCore: func() core.Command { return ls.New() },
		},
		{
			name:        "mkdir",
			description: "Create directories",
			params:      "<dir...>",
			flags: []Flag{
				{Name: "p", Description: "create parent directories as needed"},
				{Name: "m", Description: "set the file mode", TakesValue: true},
			},
			newCore: func() core.Command { return mkdir.New() },
		},
		{
			name:        "mktemp",
			description: "Create a temporary file or directory",
			params:      "[template]",
			flags: []Flag{
				{Name: "d", Description: "create a directory"},
				{Name: "p", Description: "create it inside DIR", TakesValue: true},
				{Name: "q", Description: "suppress diagnostics"},
			},
			newCore: func() core.Command { return mktemp.New() },
		},
		{
			name:        "mv",
			description: "Move or rename files",
			params:      "<source...> <dest>",
			flags: []Flag{
				{Name: "f", Description: "do not prompt before overwriting"},
				{Name: "n", Description: "do not overwrite an existing file"},
			},
			newCore: func() core.Command { return mv.New() },
		},
		{
			name:        "rm",
			description: "Remove files and directories",
			params:      "<path...>",
			flags: []Flag{
				{Name: "r", Description: "remove directories and their contents"},
				{Name: "f", Description: "ignore missing files"},
			},
			newCore: func() core.Command { return rm.New() },
		},
		{
			name:        "shasum",
			description: "Print SHA checksums",
			params:      "<file...>",
			flags:       []Flag{{Name: "a", Description: "algorithm: 1, 256 or 512", TakesValue: true}},
			newCore:     func() core.Command { return shasum.New() },
		},
		{
			name:        "tar",
			description: "Create, list or extract archives",
			params:      "-f <archive> [path...]",
			flags: []Flag{
				{Name: "c", Description: "create an archive"},
				{Name: "x", Description: "extract an archive"},
				{Name: "t", Description: "list the contents of an archive"},
				{Name: "f", Description: "archive file", TakesValue: true},
				{Name: "v", Description: "list processed files"},
			},
			newCore: func() core.Command { return tar.New() },
		},
		{
			name:        "touch",
			description: "Create files or update their timestamps",
			params:      "<file...>",
			flags: []Flag{
				{Name: "c", Description: "do not create missing files"},
				{Name: "a", Description: "change only the access time"},
				{Name: "m", Description: "change only the modification time"},
			},
			newCore: func() core.Command { return touch.New() },
		},
	}
}

// Install registers the files category, every utility and a bare-name
// alias per utility. An alias that collides with an existing name is
// skipped, leaving the utility reachable as f_<name>.
func Install(reg *shell.Registry) error {
	if err := reg.AddCategory(Category); err != nil {
		return err
	}

	var errs []error
	for _, u := range Utilities() {
		key, err := reg.AddWithCategory(u, CategoryFiles)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := reg.AddAlias(u.Name(), key); err != nil && !errors.Is(err, shell.ErrAliasExists) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
