package ledger

import (
	"time"

	"github.com/google/uuid"
)

// ActionKind names a destructive operation that needs confirmation.
type ActionKind string

const (
	ActionDeleteProduct     ActionKind = "delete_product"
	ActionDeleteCategory    ActionKind = "delete_category"
	ActionDeleteCustomer    ActionKind = "delete_customer"
	ActionDeleteRawMaterial ActionKind = "delete_raw_material"
	ActionDeleteOrder       ActionKind = "delete_order"
	ActionDeleteTransaction ActionKind = "delete_transaction"
	ActionReverseSale       ActionKind = "reverse_sale"
	ActionReset             ActionKind = "reset"
	ActionRestore           ActionKind = "restore"
)

// PendingAction is the single operation waiting for confirmation. A new
// request replaces the previous one.
type PendingAction struct {
	Token       string     `json:"token"`
	Kind        ActionKind `json:"kind"`
	TargetID    int64      `json:"targetId,omitempty"`
	RequestedAt time.Time  `json:"requestedAt"`
	snapshot    *Snapshot
}

// RequestAction checks that the action can run now and parks it until
// Confirm is called with the returned token.
func (l *Ledger) RequestAction(kind ActionKind, targetID int64) (PendingAction, error) {
	if kind == ActionRestore {
		return PendingAction{}, ErrUnknownAction
	}
	return l.request(PendingAction{Kind: kind, TargetID: targetID})
}

// RequestRestore parks a restore of s.
func (l *Ledger) RequestRestore(s Snapshot) (PendingAction, error) {
	return l.request(PendingAction{Kind: ActionRestore, snapshot: &s})
}

func (l *Ledger) request(a PendingAction) (PendingAction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.precheck(a); err != nil {
		return PendingAction{}, err
	}
	a.Token = uuid.NewString()
	a.RequestedAt = l.now()
	l.pending = &a
	l.log.Info("ação aguardando confirmação", "kind", a.Kind, "target", a.TargetID)
	return a, nil
}

// Pending returns the action awaiting confirmation, if any.
func (l *Ledger) Pending() (PendingAction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending == nil {
		return PendingAction{}, false
	}
	return *l.pending, true
}

// CancelPending drops the pending action without running it.
func (l *Ledger) CancelPending() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = nil
}

// Confirm runs the pending action if token matches it. Preconditions are
// checked again since the state may have changed after the request.
func (l *Ledger) Confirm(token string) (PendingAction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending == nil || l.pending.Token != token {
		return PendingAction{}, ErrNoPendingAction
	}
	a := *l.pending
	l.pending = nil

	if err := l.precheck(a); err != nil {
		return a, err
	}
	if err := l.run(a); err != nil {
		return a, err
	}
	l.log.Info("ação confirmada", "kind", a.Kind, "target", a.TargetID)
	if a.Kind == ActionReset {
		return a, nil
	}
	return a, l.commit()
}

func (l *Ledger) precheck(a PendingAction) error {
	id := a.TargetID
	switch a.Kind {
	case ActionDeleteProduct:
		return l.canDeleteProduct(id)
	case ActionDeleteCategory:
		return l.canDeleteCategory(id)
	case ActionDeleteCustomer:
		return l.canDeleteCustomer(id)
	case ActionDeleteRawMaterial:
		for _, rm := range l.state.RawMaterials {
			if rm.ID == id {
				return nil
			}
		}
		return ErrNotFound
	case ActionDeleteOrder:
		for _, o := range l.state.Orders {
			if o.ID == id {
				return nil
			}
		}
		return ErrNotFound
	case ActionDeleteTransaction:
		if _, t := l.findTransaction(id); t == nil {
			return ErrNotFound
		}
		return nil
	case ActionReverseSale:
		_, err := l.saleForUpdate(id)
		return err
	case ActionReset:
		return nil
	case ActionRestore:
		if a.snapshot == nil {
			return ErrInvalidSnapshot
		}
		return nil
	}
	return ErrUnknownAction
}

// run executes a prechecked action without persisting, except reset which
// clears the store itself.
func (l *Ledger) run(a PendingAction) error {
	id := a.TargetID
	switch a.Kind {
	case ActionDeleteProduct:
		l.deleteProduct(id)
	case ActionDeleteCategory:
		l.deleteCategory(id)
	case ActionDeleteCustomer:
		l.deleteCustomer(id)
	case ActionDeleteRawMaterial:
		return l.deleteRawMaterial(id)
	case ActionDeleteOrder:
		return l.deleteOrder(id)
	case ActionDeleteTransaction:
		return l.deleteTransaction(id)
	case ActionReverseSale:
		_, err := l.reverseSale(id)
		return err
	case ActionReset:
		return l.reset()
	case ActionRestore:
		l.restore(*a.snapshot)
	default:
		return ErrUnknownAction
	}
	return nil
}
