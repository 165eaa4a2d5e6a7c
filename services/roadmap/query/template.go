// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package query

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Template names known to the service.
const (
	TemplateHierarchy  = "hierarchy_query"
	TemplateInvestment = "investment_query"
)

// ErrTemplateNotFound is returned when a named template does not exist in
// either the override directory or the embedded defaults.
var ErrTemplateNotFound = errors.New("query template not found")

//go:embed templates/*.sql
var embeddedTemplates embed.FS

// TemplateStore loads raw SQL templates by name.
//
// Defaults are compiled into the binary; an optional directory can override
// individual templates without a rebuild (the deployment knob the analysts
// use to tune the warehouse queries). Templates are loaded once at startup
// by the composition root and treated as immutable afterwards.
type TemplateStore struct {
	dir string
}

// NewTemplateStore creates a store. dir may be empty, in which case only
// the embedded templates are served.
func NewTemplateStore(dir string) *TemplateStore {
	return &TemplateStore{dir: dir}
}

// Load returns the raw SQL for the named template.
//
// The override directory wins when it contains <name>.sql; otherwise the
// embedded default is used. Returns ErrTemplateNotFound (wrapped) when the
// name is unknown to both.
func (s *TemplateStore) Load(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) || name == "" {
		return "", fmt.Errorf("%w: invalid name", ErrTemplateNotFound)
	}

	if s.dir != "" {
		path := filepath.Join(s.dir, name+".sql")
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("read template %s: %w", name, err)
		}
	}

	data, err := embeddedTemplates.ReadFile("templates/" + name + ".sql")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	return string(data), nil
}
