package pos

import (
	"context"

	"bitbucket.org/mmdatafocus/foodpos/models"
	"bitbucket.org/mmdatafocus/foodpos/store"
	"bitbucket.org/mmdatafocus/foodpos/utils"
)

type CheckoutState string

const (
	StateIdle                CheckoutState = "IDLE"
	StateAwaitingMode        CheckoutState = "AWAITING_PAYMENT_MODE"
	StatePaymentModeSelected CheckoutState = "PAYMENT_MODE_SELECTED"
	StateReadyToValidate     CheckoutState = "READY_TO_VALIDATE"
	StateCompleted           CheckoutState = "COMPLETED"
)

const (
	ReasonEmptyCart    = "empty cart"
	ReasonInsufficient = "insufficient amount"
	ReasonExact        = "exact amount"
)

// CashEvaluation is the outcome of checking a tendered amount against the total.
type CashEvaluation struct {
	Total    int64  `json:"total"`
	Received int64  `json:"received"`
	Change   int64  `json:"change"`
	Valid    bool   `json:"valid"`
	Reason   string `json:"reason,omitempty"`
	Label    string `json:"label"`
}

// EvaluateCash checks received against total (both in cents).
func EvaluateCash(total, received int64) CashEvaluation {
	ev := CashEvaluation{Total: total, Received: received}
	if total <= 0 {
		ev.Reason = ReasonEmptyCart
		ev.Label = "Add products first."
		return ev
	}
	change := received - total
	switch {
	case change < 0:
		ev.Reason = ReasonInsufficient
		ev.Label = "Insufficient amount."
	case change == 0:
		ev.Valid = true
		ev.Reason = ReasonExact
		ev.Label = "Exact amount."
	default:
		ev.Valid = true
		ev.Change = change
		ev.Label = "Change: " + utils.FormatEuro(change)
	}
	return ev
}

type checkoutSession struct {
	state    CheckoutState
	mode     models.PaymentMethod
	tendered int64
}

// CheckoutView is what the payment screen shows.
type CheckoutView struct {
	State       CheckoutState        `json:"state"`
	Mode        models.PaymentMethod `json:"mode,omitempty"`
	Total       int64                `json:"total"`
	Tendered    int64                `json:"tendered"`
	Cash        *CashEvaluation      `json:"cash,omitempty"`
	CanValidate bool                 `json:"can_validate"`
	Hint        string               `json:"hint"`
}

func (t *Terminal) Checkout() CheckoutView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checkoutViewLocked()
}

// BeginCheckout enters payment. The cart must not be empty; mode and tendered
// amount start unset and validation disabled.
func (t *Terminal) BeginCheckout() (CheckoutView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.cartItemsLocked()) == 0 {
		return t.checkoutViewLocked(), ErrEmptyCart
	}
	t.checkout = checkoutSession{state: StateAwaitingMode}
	return t.checkoutViewLocked(), nil
}

// CancelCheckout drops the payment session and returns to browsing.
func (t *Terminal) CancelCheckout() CheckoutView {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.checkout = checkoutSession{state: StateIdle}
	return t.checkoutViewLocked()
}

func (t *Terminal) SelectPaymentMode(mode models.PaymentMethod) (CheckoutView, error) {
	if !mode.IsValid() {
		return t.Checkout(), models.ErrUnknownPaymentMethod
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.checkout.state == "" || t.checkout.state == StateIdle {
		return t.checkoutViewLocked(), ErrCheckoutNotBegun
	}
	t.checkout.mode = mode
	t.refreshStateLocked()
	return t.checkoutViewLocked(), nil
}

// SetTendered records the cash typed so far and re-evaluates it.
func (t *Terminal) SetTendered(input string) (CheckoutView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.checkout.state == "" || t.checkout.state == StateIdle {
		return t.checkoutViewLocked(), ErrCheckoutNotBegun
	}
	t.checkout.tendered = utils.ParseCents(input)
	t.refreshStateLocked()
	return t.checkoutViewLocked(), nil
}

func (t *Terminal) refreshStateLocked() {
	switch {
	case t.checkout.mode == "":
		t.checkout.state = StateAwaitingMode
	case t.readyLocked():
		t.checkout.state = StateReadyToValidate
	default:
		t.checkout.state = StatePaymentModeSelected
	}
}

func (t *Terminal) readyLocked() bool {
	total := sumItems(t.cartItemsLocked())
	switch t.checkout.mode {
	case models.PaymentMethodCash:
		return EvaluateCash(total, t.checkout.tendered).Valid
	case models.PaymentMethodCard:
		return total > 0
	default:
		return false
	}
}

// checkoutViewLocked derives the state from the live cart, so edits made
// during payment show up without another mode or tender change.
func (t *Terminal) checkoutViewLocked() CheckoutView {
	state := t.checkout.state
	if state == "" {
		state = StateIdle
	}
	total := sumItems(t.cartItemsLocked())
	v := CheckoutView{
		State:    state,
		Mode:     t.checkout.mode,
		Total:    total,
		Tendered: t.checkout.tendered,
	}
	switch {
	case state == StateIdle:
		v.Hint = ""
	case t.checkout.mode == "":
		v.Hint = "Choose a payment mode."
	case t.checkout.mode == models.PaymentMethodCash:
		ev := EvaluateCash(total, t.checkout.tendered)
		v.Cash = &ev
		v.CanValidate = ev.Valid
		v.Hint = ev.Label
	default:
		v.CanValidate = total > 0
		if v.CanValidate {
			v.Hint = "Take the card payment, then validate."
		} else {
			v.Hint = "Add products first."
		}
	}
	switch {
	case state == StateIdle || state == StateCompleted:
	case t.checkout.mode == "":
		v.State = StateAwaitingMode
	case v.CanValidate:
		v.State = StateReadyToValidate
	default:
		v.State = StatePaymentModeSelected
	}
	return v
}

// ValidateCheckout completes the sale. At most one validation runs at a time;
// a call that finds the guard busy returns ErrCheckoutBusy and changes nothing.
// Every failed precondition leaves all state as it was.
func (t *Terminal) ValidateCheckout(ctx context.Context) (models.Sale, error) {
	release, ok := t.guard.TryAcquire(ctx)
	if !ok {
		return models.Sale{}, ErrCheckoutBusy
	}
	defer release()

	sale, err := t.completeSale(ctx)
	if err != nil {
		return models.Sale{}, err
	}
	t.requestSalesPush()
	return sale, nil
}

func (t *Terminal) completeSale(ctx context.Context) (models.Sale, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	items := t.cartItemsLocked()
	total := sumItems(items)
	if total <= 0 {
		return models.Sale{}, ErrEmptyCart
	}
	mode := t.checkout.mode
	if !mode.IsValid() {
		return models.Sale{}, ErrNoPaymentMode
	}
	if mode == models.PaymentMethodCash && t.checkout.tendered < total {
		return models.Sale{}, ErrInsufficientCash
	}

	sale, ok := models.NewSale(items, mode, t.now())
	if !ok {
		return models.Sale{}, ErrEmptyCart
	}
	if err := t.recordSaleLocked(ctx, sale); err != nil {
		return models.Sale{}, err
	}
	t.checkout.state = StateCompleted

	// the sale is durable; a cart that fails to save only reappears after a restart
	t.cart = []models.CartLine{}
	_ = t.persist(ctx, "ValidateCheckout", store.KeyCart, t.cart)

	t.checkout = checkoutSession{state: StateIdle}
	return sale, nil
}
