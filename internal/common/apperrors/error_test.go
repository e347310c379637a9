package apperrors

import (
	"errors"
	"sync"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("TestError", func(t *testing.T) {
		ErrBaseErr := New("base error")
		assert.Equal(t, "base error", ErrBaseErr.Error())
		assert.Equal(t, "msg", ErrBaseErr.New("msg").Error())
		assert.ErrorIs(t, ErrBaseErr, ErrBaseErr)

		ErrFirstLevel := ErrBaseErr.New("first level")
		assert.Equal(t, "first level", ErrFirstLevel.Error())
		assert.ErrorIs(t, ErrFirstLevel, ErrBaseErr)

		ErrAnotherErr := New("another error")
		ErrWrappedErr := ErrFirstLevel.Err(ErrAnotherErr)
		assert.Equal(t, "first level", ErrWrappedErr.Error())
		assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedErr, ErrFirstLevel)
		assert.ErrorIs(t, ErrWrappedErr, ErrAnotherErr)

		err := pkgerrors.New("error")
		ErrWrappedErr = ErrFirstLevel.Err(err)
		assert.Equal(t, "first level", ErrWrappedErr.Error())
		assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedErr, err)

		ErrWrappedErr = ErrFirstLevel.MsgErr("msg", err)
		assert.Equal(t, "msg", ErrWrappedErr.Error())
		assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedErr, err)
		assert.NotErrorIs(t, ErrWrappedErr, ErrAnotherErr)
	})

	t.Run("derived errors leave the sentinel untouched", func(t *testing.T) {
		ErrSentinel := New("sentinel").SetStatusCode(403).SetReason("blocked")
		d := ErrSentinel.Msg("changed").Err(errors.New("cause"))

		assert.Equal(t, "sentinel", ErrSentinel.Error())
		assert.Empty(t, ErrSentinel.Unwrap())
		assert.Equal(t, "changed", d.Error())
		assert.Equal(t, 403, d.StatusCode())
		assert.Equal(t, "blocked", d.Reason())
		assert.ErrorIs(t, d, ErrSentinel)
	})

	t.Run("concurrent derivation", func(t *testing.T) {
		ErrSentinel := New("sentinel")
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = ErrSentinel.MsgErr("per request", errors.New("x"))
			}()
		}
		wg.Wait()
		assert.Equal(t, "sentinel", ErrSentinel.Error())
		assert.Empty(t, ErrSentinel.Unwrap())
	})

	t.Run("ErrorAll expands wrapped errors", func(t *testing.T) {
		e := New("outer").SetExpandError(true)
		assert.Equal(t, "outer", e.ErrorAll())
		w := e.Err(errors.New("a"), errors.New("b"))
		assert.Equal(t, "outer: a;b", w.ErrorAll())
	})
}
