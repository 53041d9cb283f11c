package policies

// LedgerObserver receives every settled payment transition.
type LedgerObserver interface {
	ObserveLedger(kind, paymentStatus string, err error)
}

type NopLedgerObserver struct{}

func (NopLedgerObserver) ObserveLedger(string, string, error) {}
