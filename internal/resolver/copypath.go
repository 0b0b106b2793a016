// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package resolver

import (
	"fmt"
	"path"
	"strings"
	"time"
)

const copyStampLayout = "20060102-150405"

// CopyPath derives the conflict-copy path for p by inserting a timestamp
// segment before the extension: dir/Name.ext becomes
// dir/Name.conflict-<timestamp>.ext. Directory and base name are preserved.
func CopyPath(p string, now time.Time) string {
	dir := path.Dir(p)
	base := path.Base(p)
	ext := path.Ext(base)
	name := strings.TrimSuffix(base, ext)

	stamped := fmt.Sprintf("%s.conflict-%s%s", name, now.UTC().Format(copyStampLayout), ext)
	if dir == "." {
		return stamped
	}
	return path.Join(dir, stamped)
}
