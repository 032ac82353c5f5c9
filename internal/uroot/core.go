// SPDX-License-Identifier: MPL-2.0

package uroot

import (
	"github.com/u-root/u-root/pkg/core"
	"github.com/u-root/u-root/pkg/core/cat"
	"github.com/u-root/u-root/pkg/core/chmod"
	"github.com/u-root/u-root/pkg/core/cp"
	"github.com/u-root/u-root/pkg/core/find"
	"github.com/u-root/u-root/pkg/core/ls"
	"github.com/u-root/u-root/pkg/core/mkdir"
	"github.com/u-root/u-root/pkg/core/mv"
	"github.com/u-root/u-root/pkg/core/rm"
	"github.com/u-root/u-root/pkg/core/touch"

	"github.com/invowk/pansh/pkg/cmdspec"
)

func init() {
	for _, c := range coreCommands() {
		RegisterDefault(c)
	}
}

// coreCommands returns the file utilities backed by u-root.
func coreCommands() []*coreCommand {
	return []*coreCommand{
		{
			baseWrapper: baseWrapper{
				spec: cmdspec.Spec{
					Name:    "ls",
					Summary: "list directory contents",
					Usage:   "ls [-laRhQ] [path...]",
					Args:    []cmdspec.ArgSpec{cmdspec.Path("path", true)},
				},
				flags: []FlagInfo{
					{Name: "l", ShortName: "l", Description: "use a long listing format"},
					{Name: "a", ShortName: "a", Description: "include entries starting with ."},
					{Name: "R", Description: "list subdirectories recursively"},
					{Name: "h", ShortName: "h", Description: "print sizes in human readable format"},
					{Name: "Q", Description: "enclose entry names in double quotes"},
				},
			},
			newCore: func() core.Command { return ls.New() },
		},
		{
			baseWrapper: baseWrapper{
				spec: cmdspec.Spec{
					Name:    "cat",
					Summary: "print file contents",
					Usage:   "cat [file...]",
					Args:    []cmdspec.ArgSpec{cmdspec.File("file", true)},
				},
				flags: []FlagInfo{
					{Name: "u", Description: "ignored"},
				},
			},
			newCore: func() core.Command { return cat.New() },
		},
		{
			baseWrapper: baseWrapper{
				spec: cmdspec.Spec{
					Name:    "cp",
					Summary: "copy files and directories",
					Usage:   "cp [-rfnP] source dest",
					Args:    []cmdspec.ArgSpec{cmdspec.Path("source", true), cmdspec.Path("dest", false)},
				},
				flags: []FlagInfo{
					{Name: "r", ShortName: "r", Description: "copy directories recursively"},
					{Name: "f", ShortName: "f", Description: "remove an existing destination first"},
					{Name: "n", ShortName: "n", Description: "do not overwrite an existing file"},
					{Name: "P", Description: "never follow symbolic links"},
				},
			},
			newCore: func() core.Command { return cp.New() },
		},
		{
			baseWrapper: baseWrapper{
				spec: cmdspec.Spec{
					Name:    "mv",
					Summary: "move or rename files",
					Usage:   "mv [-fn] source dest",
					Args:    []cmdspec.ArgSpec{cmdspec.Path("source", true), cmdspec.Path("dest", false)},
				},
				flags: []FlagInfo{
					{Name: "f", ShortName: "f", Description: "do not prompt before overwriting"},
					{Name: "n", ShortName: "n", Description: "do not overwrite an existing file"},
				},
			},
			newCore: func() core.Command { return mv.New() },
		},
		{
			baseWrapper: baseWrapper{
				spec: cmdspec.Spec{
					Name:    "rm",
					Summary: "remove files or directories",
					Usage:   "rm [-rf] path...",
					Args:    []cmdspec.ArgSpec{cmdspec.Path("path", true)},
				},
				flags: []FlagInfo{
					{Name: "r", ShortName: "r", Description: "remove directories and their contents"},
					{Name: "f", ShortName: "f", Description: "ignore nonexistent files"},
				},
			},
			newCore: func() core.Command { return rm.New() },
		},
		{
			baseWrapper: baseWrapper{
				spec: cmdspec.Spec{
					Name:    "mkdir",
					Summary: "create directories",
					Usage:   "mkdir [-p] [-m mode] dir...",
					Args:    []cmdspec.ArgSpec{cmdspec.Dir("dir", false)},
				},
				flags: []FlagInfo{
					{Name: "p", Description: "create parent directories as needed"},
					{Name: "m", Description: "set file mode", TakesValue: true},
				},
			},
			newCore: func() core.Command { return mkdir.New() },
		},
		{
			baseWrapper: baseWrapper{
				spec: cmdspec.Spec{
					Name:    "touch",
					Summary: "create files or update timestamps",
					Usage:   "touch [-cam] file...",
					Args:    []cmdspec.ArgSpec{cmdspec.File("file", false)},
				},
				flags: []FlagInfo{
					{Name: "c", ShortName: "c", Description: "do not create any files"},
					{Name: "a", Description: "change only access time"},
					{Name: "m", Description: "change only modification time"},
				},
			},
			newCore: func() core.Command { return touch.New() },
		},
		{
			baseWrapper: baseWrapper{
				spec: cmdspec.Spec{
					Name:    "chmod",
					Summary: "change file mode bits",
					Usage:   "chmod mode file...",
					Args:    []cmdspec.ArgSpec{{Name: "mode", Kind: cmdspec.KindAny}, cmdspec.Path("file", true)},
				},
				flags: []FlagInfo{
					{Name: "recursive", Description: "change files and directories recursively"},
				},
			},
			newCore: func() core.Command { return chmod.New() },
		},
		{
			baseWrapper: baseWrapper{
				spec: cmdspec.Spec{
					Name:    "find",
					Summary: "search a directory tree",
					Usage:   "find [-name pattern] [-type f|d|l] [dir]",
					Args:    []cmdspec.ArgSpec{cmdspec.Dir("dir", true)},
				},
				flags: []FlagInfo{
					{Name: "name", Description: "match file name pattern", TakesValue: true},
					{Name: "type", Description: "match file type (f, d, l)", TakesValue: true},
					{Name: "l", Description: "long listing format"},
				},
			},
			newCore: func() core.Command { return find.New() },
		},
	}
}
