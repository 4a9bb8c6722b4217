// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"errors"

	"github.com/matt-FFFFFF/mexec/internal/pipeline"
	"github.com/spf13/afero"
)

// FsFactory returns the filesystem reports are written to.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// writeReport creates or truncates path and writes res to it as YAML.
func writeReport(path string, res *pipeline.Result) error {
	f, err := FsFactory().Create(path)
	if err != nil {
		return errors.Join(pipeline.ErrWriteReport, err)
	}

	werr := res.WriteYAML(f)
	cerr := f.Close()

	if cerr != nil {
		cerr = errors.Join(pipeline.ErrWriteReport, cerr)
	}

	return errors.Join(werr, cerr)
}
