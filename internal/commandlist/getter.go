// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commandlist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
)

const (
	goGetterForcedSeparator = "::"
	goGetterSchemeSeparator = "://"
	goGetterPathSeparator   = "//"
	goGetterRefSeparator    = "?"
	minimumGetterParts      = 3 // scheme, host and subdirectory path
	fetchedFileName         = "commands"
)

// isRemote reports whether src uses go-getter syntax rather than naming a local file.
func isRemote(src string) bool {
	return strings.Contains(src, goGetterForcedSeparator) || strings.Contains(src, goGetterSchemeSeparator)
}

// fetch downloads src with go-getter into a temporary directory and returns the file content.
// A src with a subdirectory component (repo//dir/file) is fetched as a directory and the
// named file is read from it, anything else is fetched as a single file.
func fetch(ctx context.Context, src string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "mexec-getter-*")
	if err != nil {
		return nil, errors.Join(ErrReadCommandList, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrReadCommandList, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     src,
		Dst:     filepath.Join(tmpDir, fetchedFileName),
		Pwd:     wd,
		GetMode: getter.ModeFile,
	}

	var fileName string

	if newURL, name := splitFileNameFromGetterURL(src); newURL != "" && name != "" {
		req.Src = newURL
		req.Dst = filepath.Join(tmpDir, "g")
		req.GetMode = getter.ModeDir
		fileName = name
	}

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrReadCommandList, err)
	}

	path := res.Dst
	if fileName != "" {
		path = filepath.Join(res.Dst, fileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrReadCommandList, err)
	}

	return data, nil
}

// splitFileNameFromGetterURL splits a go-getter URL with a subdirectory component into
// the URL of the directory and the name of the file inside it, keeping any ref query.
// It returns empty strings when the URL has no subdirectory component.
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]

	if strings.Contains(last, goGetterRefSeparator) {
		refSplit := strings.Split(last, goGetterRefSeparator)
		if len(refSplit) > 1 {
			ref = strings.Join(refSplit[1:], "")
		}

		last = refSplit[0]
	}

	if filepath.Clean(last) == filepath.Dir(last) {
		return "", ""
	}

	fileName := filepath.Base(last)
	parts[len(parts)-1] = filepath.Dir(last)

	if parts[len(parts)-1] == "." {
		parts = parts[:len(parts)-1]
	}

	newURL := strings.Join(parts, goGetterPathSeparator)

	if ref != "" {
		newURL += goGetterRefSeparator + ref
	}

	return newURL, fileName
}
