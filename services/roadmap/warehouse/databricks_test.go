// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package warehouse

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewDatabricksClient_RequiresCredentials verifies construction fails
// fast on incomplete configuration.
func TestNewDatabricksClient_RequiresCredentials(t *testing.T) {
	_, err := NewDatabricksClient(Config{Hostname: "host"})
	assert.Error(t, err)

	_, err = NewDatabricksClient(Config{Hostname: "host", HTTPPath: "/sql/1.0", AccessToken: "tok"})
	require.NoError(t, err)
}

// TestClassify verifies driver errors map onto the sentinel categories.
func TestClassify(t *testing.T) {
	t.Run("deadline becomes timeout", func(t *testing.T) {
		err := classify(fmt.Errorf("query: %w", context.DeadlineExceeded))
		assert.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("net errors become connection errors", func(t *testing.T) {
		err := classify(&net.OpError{Op: "dial", Err: errors.New("refused")})
		assert.ErrorIs(t, err, ErrConnection)
	})

	t.Run("everything else is a query error", func(t *testing.T) {
		err := classify(errors.New("TABLE_OR_VIEW_NOT_FOUND"))
		assert.ErrorIs(t, err, ErrQuery)
	})
}
