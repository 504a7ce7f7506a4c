package initchecker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type provider interface {
	Do()
}

type providerImpl struct{}

func (providerImpl) Do() {}

func TestCheckInit(t *testing.T) {
	t.Run("все зависимости заданы", func(t *testing.T) {
		var p provider = providerImpl{}
		require.NotPanics(t, func() {
			CheckInit("provider", p, "value", 1)
		})
	})
	t.Run("nil интерфейс", func(t *testing.T) {
		var p provider
		require.PanicsWithValue(t, "зависимость provider не инициализирована", func() {
			CheckInit("provider", p)
		})
	})
	t.Run("типизированный nil", func(t *testing.T) {
		var ptr *providerImpl
		var p provider = ptr
		require.Panics(t, func() {
			CheckInit("provider", p)
		})
	})
	t.Run("нечетное количество аргументов", func(t *testing.T) {
		require.Panics(t, func() {
			CheckInit("provider")
		})
	})
}
