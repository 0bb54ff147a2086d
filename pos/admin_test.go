package pos

import (
	"context"
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/foodpos/models"
	"bitbucket.org/mmdatafocus/foodpos/store"
	"bitbucket.org/mmdatafocus/foodpos/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyPin_DefaultIsHashed(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	term, _ := newTestTerminal(t, st)

	assert.True(t, term.VerifyPin("1234"))
	assert.True(t, term.VerifyPin(" 1234 "))
	assert.False(t, term.VerifyPin("0000"))
	assert.False(t, term.VerifyPin(""))

	stored := store.Load(ctx, st, store.KeyAdminPin, "")
	assert.NotEqual(t, "1234", stored)
	assert.True(t, strings.HasPrefix(stored, "$2"))
}

func TestVerifyPin_AcceptsPlainStoredPin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	require.NoError(t, st.Save(ctx, store.KeyAdminPin, "9876"))

	term, _ := newTestTerminal(t, st)
	assert.True(t, term.VerifyPin("9876"))
	assert.False(t, term.VerifyPin("1234"))
}

func TestChangePin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	term, _ := newTestTerminal(t, st)

	assert.ErrorIs(t, term.ChangePin(ctx, "0000", "5555"), ErrInvalidPin)
	assert.True(t, term.VerifyPin("1234"))

	assert.ErrorIs(t, term.ChangePin(ctx, "1234", "  "), ErrEmptyPin)
	assert.True(t, term.VerifyPin("1234"))

	require.NoError(t, term.ChangePin(ctx, "1234", "5555"))
	assert.False(t, term.VerifyPin("1234"))
	assert.True(t, term.VerifyPin("5555"))

	reloaded, _ := newTestTerminal(t, st)
	assert.True(t, reloaded.VerifyPin("5555"))
}

func TestAddProduct(t *testing.T) {
	ctx := context.Background()
	term, rs := newTestTerminal(t, nil)

	p, err := term.AddProduct(ctx, ProductInput{Name: " Jus mangue ", Category: "Boissons", Price: "2,50 €"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.ID, "P-"))
	assert.Equal(t, strings.ToUpper(p.ID), p.ID)
	assert.Equal(t, "Jus mangue", p.Name)
	assert.Equal(t, int64(250), p.Price)
	assert.True(t, p.Active)

	second, err := term.AddProduct(ctx, ProductInput{Name: "Jus goyave", Category: "Boissons", Price: "2.5"})
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, second.ID)

	got, ok := term.Product(p.ID)
	require.True(t, ok)
	assert.Equal(t, p, got)

	_, catalogPushes := rs.counts()
	assert.Equal(t, 2, catalogPushes)
}

func TestAddProduct_MissingField(t *testing.T) {
	ctx := context.Background()
	term, rs := newTestTerminal(t, nil)
	before := term.Products()

	_, err := term.AddProduct(ctx, ProductInput{Name: "Jus", Category: "", Price: "2"})
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = term.AddProduct(ctx, ProductInput{Name: "Jus", Category: "Boissons", Price: ""})
	assert.ErrorIs(t, err, ErrMissingField)

	assert.Equal(t, before, term.Products())
	_, catalogPushes := rs.counts()
	assert.Zero(t, catalogPushes)
}

func TestAddProduct_PriceOutOfRange(t *testing.T) {
	ctx := context.Background()
	term, rs := newTestTerminal(t, nil)
	before := term.Products()

	_, err := term.AddProduct(ctx, ProductInput{Name: "Jus", Category: "Boissons", Price: "1e20"})
	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.ErrorIs(t, term.UpsertProduct(ctx, models.Product{ID: "X", Name: "X", Price: utils.MaxCents + 1}), ErrInvalidPrice)

	assert.Equal(t, before, term.Products())
	_, catalogPushes := rs.counts()
	assert.Zero(t, catalogPushes)
}

func TestEditProduct_KeepsActiveFlag(t *testing.T) {
	ctx := context.Background()
	term, rs := newTestTerminal(t, nil)
	require.NoError(t, term.ToggleProduct(ctx, "BO-THE", false))

	p, err := term.EditProduct(ctx, "BO-THE", ProductInput{Name: "Thé glacé", Category: "Boissons", Price: "3"})
	require.NoError(t, err)
	assert.Equal(t, models.Product{ID: "BO-THE", Category: "Boissons", Name: "Thé glacé", Price: 300, Active: false}, p)

	_, err = term.EditProduct(ctx, "missing", ProductInput{Name: "x", Category: "y", Price: "1"})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, catalogPushes := rs.counts()
	assert.Equal(t, 2, catalogPushes)
}

func TestReset_RestoresFirstRunState(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	term, _ := newTestTerminal(t, st)

	fillCart(t, term)
	_, err := term.BeginCheckout()
	require.NoError(t, err)
	_, err = term.SelectPaymentMode(models.PaymentMethodCard)
	require.NoError(t, err)
	_, err = term.ValidateCheckout(ctx)
	require.NoError(t, err)
	require.NoError(t, term.AddToCart(ctx, "BO-COC", 1))
	_, err = term.AddProduct(ctx, ProductInput{Name: "Jus", Category: "Boissons", Price: "2"})
	require.NoError(t, err)
	require.NoError(t, term.ChangePin(ctx, "1234", "4321"))

	require.NoError(t, term.Reset(ctx))

	assert.Equal(t, models.DefaultProducts(), term.Products())
	assert.Empty(t, term.CartLines())
	assert.Empty(t, term.Sales())
	assert.True(t, term.VerifyPin("1234"))

	reloaded, _ := newTestTerminal(t, st)
	assert.Equal(t, models.DefaultProducts(), reloaded.Products())
	assert.Empty(t, reloaded.Sales())
}
