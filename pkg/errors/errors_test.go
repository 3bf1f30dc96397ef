package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/damonswayn/agentconfig/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := errors.New(errors.ErrConfigValid, "version field is required")
	assert.Equal(t, errors.ErrConfigValid, err.Code)
	assert.Equal(t, "[CONFIG_INVALID] version field is required", err.Error())
}

func TestWrap(t *testing.T) {
	inner := fmt.Errorf("permission denied")
	err := errors.Wrapf(inner, errors.ErrFileAccess, "cannot read %s", "/etc/shadow")

	assert.Contains(t, err.Error(), "FILE_ACCESS")
	assert.Contains(t, err.Error(), "permission denied")
	assert.ErrorIs(t, err, inner)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrFileAccess, "nothing"))
}

func TestIsErrorCode(t *testing.T) {
	err := errors.New(errors.ErrProjectRootMissing, "project scope requires a project root")
	wrapped := fmt.Errorf("sync failed: %w", err)

	assert.True(t, errors.IsErrorCode(wrapped, errors.ErrProjectRootMissing))
	assert.False(t, errors.IsErrorCode(wrapped, errors.ErrConfigValid))
	assert.False(t, errors.IsErrorCode(stderrors.New("plain"), errors.ErrProjectRootMissing))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, errors.ErrDirNotEmpty, errors.GetErrorCode(errors.New(errors.ErrDirNotEmpty, "refusing")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("plain")))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errors.Kind
	}{
		{"config invalid", errors.New(errors.ErrConfigValid, "x"), errors.KindValidation},
		{"missing project root", errors.New(errors.ErrProjectRootMissing, "x"), errors.KindValidation},
		{"strict missing source", errors.New(errors.ErrSourceMissing, "x"), errors.KindValidation},
		{"cancelled", errors.New(errors.ErrConflictCancelled, "x"), errors.KindConflict},
		{"non-empty dir", errors.New(errors.ErrDirNotEmpty, "x"), errors.KindFilesystem},
		{"wrapped keeps kind", fmt.Errorf("outer: %w", errors.New(errors.ErrConflictCancelled, "x")), errors.KindConflict},
		{"plain error", stderrors.New("boom"), errors.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.KindOf(tt.err))
		})
	}
}
