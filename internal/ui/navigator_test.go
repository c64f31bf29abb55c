package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNavigatorPushPop(t *testing.T) {
	nav := NewNavigator(RouteProducts)
	assert.Equal(t, RouteProducts, nav.Current().Route)

	nav.Push(RouteProductDetail, Params{ProductID: 7})
	assert.Equal(t, RouteProductDetail, nav.Current().Route)
	assert.Equal(t, 7, nav.Current().Params.ProductID)

	nav.Pop()
	assert.Equal(t, RouteProducts, nav.Current().Route)
}

func TestNavigatorPopNeverRemovesRoot(t *testing.T) {
	nav := NewNavigator(RouteLogin)
	nav.Pop()
	nav.Pop()
	assert.Equal(t, RouteLogin, nav.Current().Route)
	assert.Equal(t, 1, nav.Depth())
}

func TestNavigatorReplaceKeepsDepth(t *testing.T) {
	nav := NewNavigator(RouteProducts)
	nav.Push(RouteCart, Params{})
	nav.Replace(RouteOrderDetail, Params{OrderID: "o1"})

	assert.Equal(t, RouteOrderDetail, nav.Current().Route)
	assert.Equal(t, "o1", nav.Current().Params.OrderID)
	assert.Equal(t, 2, nav.Depth())

	nav.Pop()
	assert.Equal(t, RouteProducts, nav.Current().Route)
}

func TestNavigatorResetDiscardsHistory(t *testing.T) {
	nav := NewNavigator(RouteLogin)
	nav.Push(RouteRegister, Params{})
	nav.Reset(RouteProducts)

	assert.Equal(t, RouteProducts, nav.Current().Route)
	assert.Equal(t, 1, nav.Depth())
}
