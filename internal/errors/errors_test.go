// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClass_ExitCode(t *testing.T) {
	assert.Equal(t, 2, ClassInput.ExitCode())
	assert.Equal(t, 3, ClassVCS.ExitCode())
	assert.Equal(t, 4, ClassPartial.ExitCode())
	assert.Equal(t, 5, ClassInternal.ExitCode())
	assert.Equal(t, 1, Class(99).ExitCode())
}

func TestNewInputError_NoCause(t *testing.T) {
	err := NewInputError("bad flag", "--depth must be positive", "pass a positive integer")
	assert.Equal(t, ClassInput, err.Class)
	assert.Nil(t, err.Cause)
	assert.Equal(t, "bad flag: --depth must be positive", err.Error())
}

func TestNewVCSError_WrapsCause(t *testing.T) {
	cause := errors.New("exit status 128")
	err := NewVCSError("cannot read commit", "git diff failed", "check the commit id", cause)
	assert.Equal(t, ClassVCS, err.Class)
	assert.Same(t, cause, err.Unwrap())
	assert.ErrorIs(t, err, cause)
}

func TestNewPartialError(t *testing.T) {
	err := NewPartialError("some files failed", "3 of 10 files failed", "")
	assert.Equal(t, ClassPartial, err.Class)
	assert.Equal(t, "some files failed: 3 of 10 files failed", err.Error())
}

func TestNewInternalError_WrapsCause(t *testing.T) {
	cause := errors.New("nil pointer")
	err := NewInternalError("internal invariant violated", cause.Error(), "please report this", cause)
	assert.Equal(t, ClassInternal, err.Class)
	assert.Same(t, cause, err.Unwrap())
}

func TestCLIError_ErrorWithoutDetail(t *testing.T) {
	err := &CLIError{Class: ClassInput, Title: "bad input"}
	assert.Equal(t, "bad input", err.Error())
}
