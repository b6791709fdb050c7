package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/core/types"
)

func TestOrderStatusDerivation(t *testing.T) {
	o := New(id.New(), id.New())
	assert.Equal(t, StatusPending, o.Status())

	require.NoError(t, o.Confirm())
	assert.Equal(t, StatusProcessing, o.Status())

	require.NoError(t, o.Lock())
	assert.Equal(t, StatusCompleted, o.Status())
}

func TestOrderLockRequiresConfirmation(t *testing.T) {
	o := New(id.New(), id.New())

	err := o.Lock()
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.False(t, o.IsLocked)
}

func TestOrderLockedIsImmutable(t *testing.T) {
	o := New(id.New(), id.New())
	require.NoError(t, o.Confirm())
	require.NoError(t, o.Lock())

	err := o.CanModifyItems()
	require.Error(t, err)
	assert.True(t, apperror.IsImmutableDocument(err))

	// confirming again is also rejected once locked
	err = o.Confirm()
	assert.True(t, apperror.IsImmutableDocument(err))
}

func TestOrderValidate(t *testing.T) {
	o := New(id.New(), id.New())
	require.NoError(t, o.Validate(context.Background()))

	pid := id.New()
	o.Items = append(o.Items, Item{
		ID:        id.New(),
		OrderID:   o.ID,
		LineNo:    1,
		ProductID: &pid,
		Quantity:  types.MustMoney("2"),
		UnitPrice: types.MustMoney("10"),
		LineTotal: types.MustMoney("20"),
	})
	require.NoError(t, o.Validate(context.Background()))

	o.Items[0].Quantity = types.MustMoney("0")
	require.Error(t, o.Validate(context.Background()))

	o.Items[0].Quantity = types.MustMoney("1")
	bid := id.New()
	o.Items[0].BundleID = &bid
	require.Error(t, o.Validate(context.Background()), "product and bundle on one line")
}

func TestOrderTotal(t *testing.T) {
	o := New(id.New(), id.New())
	o.Items = []Item{
		{LineTotal: types.MustMoney("90")},
		{LineTotal: types.MustMoney("9.99")},
	}
	assert.True(t, o.Total().Equal(types.MustMoney("99.99")))
}
